package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codecrafters-dev/platform/internal/db/repository"
	"github.com/codecrafters-dev/platform/internal/schema"
	"github.com/codecrafters-dev/platform/internal/submission"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, params repository.CreateChallengeParams) (repository.Challenge, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.Challenge), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, limit, offset int) ([]repository.Challenge, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]repository.Challenge), args.Error(1)
}

func (m *mockStore) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]repository.Challenge, error) {
	args := m.Called(ctx, authorID, limit)
	return args.Get(0).([]repository.Challenge), args.Error(1)
}

func validRequest() CreateRequest {
	return CreateRequest{
		Title:      "  Two Sum  ",
		Type:       schema.ChallengeTypeAlgorithm,
		Difficulty: schema.DifficultyEasy,
		BriefDesc:  "Find two numbers",
		ImagesURL:  []string{"https://cdn.test/a.jpg"},
	}
}

func TestService_CreateTrimsAndStores(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, nil, zerolog.Nop())
	author := uuid.New()

	stored := repository.Challenge{ID: uuid.New(), AuthorID: author, Title: "Two Sum", CreatedAt: time.Now()}
	store.On("Create", mock.Anything, mock.MatchedBy(func(p repository.CreateChallengeParams) bool {
		return p.AuthorID == author && p.Title == "Two Sum" && p.VideoURL == nil && len(p.ImagesURL) == 1
	})).Return(stored, nil)

	got, err := svc.Create(context.Background(), author, validRequest())
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	store.AssertExpectations(t)
}

func TestService_CreateValidation(t *testing.T) {
	video := "not a url"
	cases := map[string]struct {
		mutate func(*CreateRequest)
		field  string
	}{
		"blank title":   {func(r *CreateRequest) { r.Title = "   " }, "title"},
		"unknown type":  {func(r *CreateRequest) { r.Type = "Puzzle" }, "type"},
		"unknown level": {func(r *CreateRequest) { r.Difficulty = "Insane" }, "difficulty"},
		"no images":     {func(r *CreateRequest) { r.ImagesURL = []string{} }, "imagesURL"},
		"bad image url": {func(r *CreateRequest) { r.ImagesURL = []string{"nope"} }, "imagesURL"},
		"bad video url": {func(r *CreateRequest) { r.VideoURL = &video }, "videoURL"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := new(mockStore)
			svc := NewService(store, nil, zerolog.Nop())
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), uuid.New(), req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_CatalogDrivesValidation(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, schema.StaticCatalog{
		Types:  []schema.ChallengeType{schema.ChallengeTypeFrontend},
		Levels: []schema.Difficulty{schema.DifficultyHard},
	}, zerolog.Nop())

	_, err := svc.Create(context.Background(), uuid.New(), validRequest())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
	assert.Len(t, svc.Options().Types, 1)
}

func TestService_ListClampsPage(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, nil, zerolog.Nop())
	store.On("List", mock.Anything, 100, 0).Return([]repository.Challenge{}, nil)
	store.On("List", mock.Anything, 20, 40).Return([]repository.Challenge{{Title: "x"}}, nil)

	_, limit, offset, err := svc.List(context.Background(), 1000, -5)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)

	items, limit, _, err := svc.List(context.Background(), 0, 40)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Len(t, items, 1)
	store.AssertExpectations(t)
}

func TestBackend_MapsErrors(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, nil, zerolog.Nop())
	author := uuid.New()
	store.On("Create", mock.Anything, mock.Anything).Return(repository.Challenge{}, errors.New("db down")).Once()

	backend := svc.Backend(author, nil)

	err := backend.CreateChallenge(context.Background(), submission.Payload{Title: "Two Sum"})
	var serr *submission.SubmissionError
	require.ErrorAs(t, err, &serr)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	err = backend.CreateChallenge(context.Background(), submission.Payload{
		Title:      "Two Sum",
		Type:       schema.ChallengeTypeAlgorithm,
		Difficulty: schema.DifficultyEasy,
		ImagesURL:  []string{"https://cdn.test/a.jpg"},
	})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "could not save challenge", serr.Reason)
	store.AssertExpectations(t)
}

func TestBackend_ReportsCreated(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, nil, zerolog.Nop())
	author := uuid.New()
	stored := repository.Challenge{ID: uuid.New(), AuthorID: author}
	store.On("Create", mock.Anything, mock.Anything).Return(stored, nil)

	var got repository.Challenge
	err := svc.Backend(author, func(c repository.Challenge) { got = c }).CreateChallenge(context.Background(), submission.Payload{
		Title:      "Two Sum",
		Type:       schema.ChallengeTypeAlgorithm,
		Difficulty: schema.DifficultyEasy,
		ImagesURL:  []string{"https://cdn.test/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecrafters-dev/platform/internal/schema"
)

var challengeCols = []string{"challenge_id", "author_id", "title", "type", "difficulty", "brief_desc", "images_url", "video_url", "created_at"}

func strPtr(s string) *string { return &s }

func TestChallengeRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewChallengeRepository(mock)
	author := uuid.New()
	id := uuid.New()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	video := strPtr("https://cdn.test/video/demo.mp4")
	images := []string{"https://cdn.test/image/a.jpg", "https://cdn.test/image/b.jpg"}

	mock.ExpectQuery("INSERT INTO challenges").
		WithArgs(author, "Two Sum", "Algorithm", "Easy", "desc", images, video).
		WillReturnRows(pgxmock.NewRows(challengeCols).
			AddRow(id, author, "Two Sum", "Algorithm", "Easy", "desc", images, video, created))

	got, err := repo.Create(context.Background(), CreateChallengeParams{
		AuthorID:   author,
		Title:      "Two Sum",
		Type:       schema.ChallengeTypeAlgorithm,
		Difficulty: schema.DifficultyEasy,
		BriefDesc:  "desc",
		ImagesURL:  images,
		VideoURL:   video,
	})
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, schema.ChallengeTypeAlgorithm, got.Type)
	assert.Equal(t, schema.DifficultyEasy, got.Difficulty)
	assert.Equal(t, images, got.ImagesURL)
	require.NotNil(t, got.VideoURL)
	assert.Equal(t, *video, *got.VideoURL)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_CreateWrapsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("check constraint violated")
	mock.ExpectQuery("INSERT INTO challenges").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(boom)

	_, err = NewChallengeRepository(mock).Create(context.Background(), CreateChallengeParams{
		AuthorID: uuid.New(),
		Title:    "x",
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "insert challenge")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_ListByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	author := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows(challengeCols).
		AddRow(uuid.New(), author, "Newest", "Frontend", "Hard", "", []string{"https://cdn.test/1.png"}, nil, now).
		AddRow(uuid.New(), author, "Older", "Backend", "Medium", "", []string{"https://cdn.test/2.png"}, nil, now.Add(-time.Hour))

	mock.ExpectQuery("JOIN users u").WithArgs("ada", 50).WillReturnRows(rows)

	got, err := NewChallengeRepository(mock).ListByUsername(context.Background(), "ada", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Newest", got[0].Title)
	assert.Equal(t, schema.ChallengeTypeBackend, got[1].Type)
	assert.Nil(t, got[0].VideoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepository_ListEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM challenges").WithArgs(20, 0).WillReturnRows(pgxmock.NewRows(challengeCols))

	got, err := NewChallengeRepository(mock).List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

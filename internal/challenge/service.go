package challenge

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/db/repository"
	"github.com/codecrafters-dev/platform/internal/schema"
	"github.com/codecrafters-dev/platform/internal/submission"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, params repository.CreateChallengeParams) (repository.Challenge, error)
	List(ctx context.Context, limit, offset int) ([]repository.Challenge, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]repository.Challenge, error)
}

// Service implements the create-challenge RPC and challenge listings.
type Service struct {
	store    Store
	catalog  schema.Catalog
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(store Store, catalog schema.Catalog, logger zerolog.Logger) *Service {
	if catalog == nil {
		catalog = schema.DefaultCatalog
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	svc := &Service{
		store:    store,
		catalog:  catalog,
		validate: validate,
		logger:   logger.With().Str("component", "challenge").Logger(),
	}
	_ = validate.RegisterValidation("challenge_type", func(fl validator.FieldLevel) bool {
		t := schema.ChallengeType(fl.Field().String())
		for _, allowed := range svc.catalog.ChallengeTypes() {
			if t == allowed {
				return true
			}
		}
		return false
	})
	_ = validate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		d := schema.Difficulty(fl.Field().String())
		for _, allowed := range svc.catalog.Difficulties() {
			if d == allowed {
				return true
			}
		}
		return false
	})
	return svc
}

// Options renders the enumerated option sets.
func (s *Service) Options() schema.Options {
	return schema.OptionsOf(s.catalog)
}

// Catalog exposes the option sets the service validates against.
func (s *Service) Catalog() schema.Catalog {
	return s.catalog
}

// Create validates req and stores it under authorID.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, req CreateRequest) (repository.Challenge, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		return repository.Challenge{}, toValidationError(err)
	}

	created, err := s.store.Create(ctx, repository.CreateChallengeParams{
		AuthorID:   authorID,
		Title:      req.Title,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		BriefDesc:  req.BriefDesc,
		ImagesURL:  req.ImagesURL,
		VideoURL:   req.VideoURL,
	})
	if err != nil {
		return repository.Challenge{}, fmt.Errorf("store challenge: %w", err)
	}

	s.logger.Info().
		Str("challenge_id", created.ID.String()).
		Str("author_id", authorID.String()).
		Int("images", len(created.ImagesURL)).
		Bool("video", created.VideoURL != nil).
		Msg("challenge created")
	return created, nil
}

// List returns a page of challenges, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.Challenge, int, int, error) {
	limit, offset = clampPage(limit, offset)
	items, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, limit, offset, nil
}

// ListByAuthor returns one author's challenges, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]repository.Challenge, error) {
	limit, _ = clampPage(limit, 0)
	return s.store.ListByAuthor(ctx, authorID, limit)
}

// Backend returns a submission.Backend that creates challenges for authorID
// and hands every stored row to onCreate.
func (s *Service) Backend(authorID uuid.UUID, onCreate func(repository.Challenge)) submission.Backend {
	return &localBackend{svc: s, authorID: authorID, onCreate: onCreate}
}

type localBackend struct {
	svc      *Service
	authorID uuid.UUID
	onCreate func(repository.Challenge)
}

func (b *localBackend) CreateChallenge(ctx context.Context, p submission.Payload) error {
	created, err := b.svc.Create(ctx, b.authorID, RequestFromPayload(p))
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return &submission.SubmissionError{Reason: verr.Error(), Err: err}
		}
		return &submission.SubmissionError{Reason: "could not save challenge", Err: err}
	}
	if b.onCreate != nil {
		b.onCreate(created)
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return &ValidationError{Field: field, Message: validationMessage(fe)}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "needs at least " + fe.Param() + " entries"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "challenge_type":
		return "is not a known challenge type"
	case "difficulty":
		return "is not a known difficulty"
	default:
		return "is invalid"
	}
}

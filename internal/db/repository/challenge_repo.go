package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/codecrafters-dev/platform/internal/schema"
)

const challengeColumns = `challenge_id, author_id, title, type, difficulty, brief_desc, images_url, video_url, created_at`

const createChallenge = `INSERT INTO challenges (author_id, title, type, difficulty, brief_desc, images_url, video_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + challengeColumns

const listChallenges = `SELECT ` + challengeColumns + `
FROM challenges
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

const listChallengesByAuthor = `SELECT ` + challengeColumns + `
FROM challenges
WHERE author_id = $1
ORDER BY created_at DESC
LIMIT $2`

const listChallengesByUsername = `SELECT c.challenge_id, c.author_id, c.title, c.type, c.difficulty, c.brief_desc, c.images_url, c.video_url, c.created_at
FROM challenges c
JOIN users u ON u.user_id = c.author_id
WHERE u.username = $1
ORDER BY c.created_at DESC
LIMIT $2`

// ChallengeRepository persists challenges.
type ChallengeRepository struct {
	db DBTX
}

func NewChallengeRepository(db DBTX) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create inserts a challenge and returns the stored row.
func (r *ChallengeRepository) Create(ctx context.Context, params CreateChallengeParams) (Challenge, error) {
	images := params.ImagesURL
	if images == nil {
		images = []string{}
	}
	row := r.db.QueryRow(ctx, createChallenge,
		params.AuthorID,
		params.Title,
		string(params.Type),
		string(params.Difficulty),
		params.BriefDesc,
		images,
		params.VideoURL,
	)
	c, err := scanChallenge(row)
	if err != nil {
		return Challenge{}, fmt.Errorf("insert challenge: %w", err)
	}
	return c, nil
}

// List returns challenges newest first.
func (r *ChallengeRepository) List(ctx context.Context, limit, offset int) ([]Challenge, error) {
	rows, err := r.db.Query(ctx, listChallenges, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return collectChallenges(rows)
}

// ListByAuthor returns one author's challenges newest first.
func (r *ChallengeRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]Challenge, error) {
	rows, err := r.db.Query(ctx, listChallengesByAuthor, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list challenges by author: %w", err)
	}
	return collectChallenges(rows)
}

// ListByUsername returns the challenges of the user with username.
func (r *ChallengeRepository) ListByUsername(ctx context.Context, username string, limit int) ([]Challenge, error) {
	rows, err := r.db.Query(ctx, listChallengesByUsername, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list challenges by username: %w", err)
	}
	return collectChallenges(rows)
}

func collectChallenges(rows pgx.Rows) ([]Challenge, error) {
	defer rows.Close()
	out := make([]Challenge, 0)
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanChallenge(row pgx.Row) (Challenge, error) {
	var (
		c          Challenge
		typ        string
		difficulty string
	)
	if err := row.Scan(
		&c.ID,
		&c.AuthorID,
		&c.Title,
		&typ,
		&difficulty,
		&c.BriefDesc,
		&c.ImagesURL,
		&c.VideoURL,
		&c.CreatedAt,
	); err != nil {
		return Challenge{}, notFound(err)
	}
	c.Type = schema.ChallengeType(typ)
	c.Difficulty = schema.Difficulty(difficulty)
	return c, nil
}

package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/codecrafters-dev/platform/internal/schema"
)

// Challenge is a stored challenge row.
type Challenge struct {
	ID         uuid.UUID            `json:"id"`
	AuthorID   uuid.UUID            `json:"authorId"`
	Title      string               `json:"title"`
	Type       schema.ChallengeType `json:"type"`
	Difficulty schema.Difficulty    `json:"difficulty"`
	BriefDesc  string               `json:"briefDesc"`
	ImagesURL  []string             `json:"imagesURL"`
	VideoURL   *string              `json:"videoURL,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// User is a stored account row.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Image     *string   `json:"image,omitempty"`
	About     *string   `json:"about,omitempty"`
	GithubURL *string   `json:"githubURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateChallengeParams holds the columns a new challenge is inserted with.
type CreateChallengeParams struct {
	AuthorID   uuid.UUID
	Title      string
	Type       schema.ChallengeType
	Difficulty schema.Difficulty
	BriefDesc  string
	ImagesURL  []string
	VideoURL   *string
}

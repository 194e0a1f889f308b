package challenge

import (
	"fmt"

	"github.com/codecrafters-dev/platform/internal/db/repository"
	"github.com/codecrafters-dev/platform/internal/schema"
	"github.com/codecrafters-dev/platform/internal/submission"
)

// CreateRequest is the create-challenge RPC body. The title cap equals
// submission.TitleMaxLength.
type CreateRequest struct {
	Title      string               `json:"title" validate:"required,max=120"`
	Type       schema.ChallengeType `json:"type" validate:"required,challenge_type"`
	Difficulty schema.Difficulty    `json:"difficulty" validate:"required,difficulty"`
	BriefDesc  string               `json:"briefDesc" validate:"max=5000"`
	ImagesURL  []string             `json:"imagesURL" validate:"required,min=1,dive,url"`
	VideoURL   *string              `json:"videoURL,omitempty" validate:"omitempty,url"`
}

// RequestFromPayload maps an orchestrator payload onto the RPC body.
func RequestFromPayload(p submission.Payload) CreateRequest {
	return CreateRequest{
		Title:      p.Title,
		Type:       p.Type,
		Difficulty: p.Difficulty,
		BriefDesc:  p.BriefDesc,
		ImagesURL:  p.ImagesURL,
		VideoURL:   p.VideoURL,
	}
}

// ListResponse wraps a page of challenges.
type ListResponse struct {
	Challenges []repository.Challenge `json:"challenges"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// NewPageResponse bootstraps the create-challenge page.
type NewPageResponse struct {
	Options     schema.Options                       `json:"options"`
	Dropzones   map[string]submission.DropzoneConfig `json:"dropzones"`
	ListingPath string                               `json:"listing_path"`
}

// RejectedFile reports a file the dropzone refused.
type RejectedFile struct {
	Name    string `json:"name"`
	Class   string `json:"asset_class"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// SubmitResponse answers a successful multipart submission.
type SubmitResponse struct {
	Challenge     repository.Challenge `json:"challenge"`
	AttemptID     string               `json:"attempt_id"`
	Redirect      string               `json:"redirect"`
	RejectedFiles []RejectedFile       `json:"rejected_files"`
}

// ValidationError reports the first invalid field of a create request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/codecrafters-dev/platform/internal/db/repository"
)

// DefaultBio is shown for users who never wrote one.
const DefaultBio = "I’m a mysterious individual who has yet to fill out my bio. One thing’s for certain: I love writing code!"

// Profile is the public view of a user. Contact details stay out of it.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      *string   `json:"name,omitempty"`
	Image     *string   `json:"image,omitempty"`
	About     *string   `json:"about,omitempty"`
	GithubURL *string   `json:"githubURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Bio       string    `json:"bio"`
}

func newProfile(u repository.User) Profile {
	bio := DefaultBio
	if u.About != nil && *u.About != "" {
		bio = *u.About
	}
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Image:     u.Image,
		About:     u.About,
		GithubURL: u.GithubURL,
		CreatedAt: u.CreatedAt,
		Bio:       bio,
	}
}

// EditAboutRequest is the body of PUT /v1/users/{username}/about.
type EditAboutRequest struct {
	About string `json:"about"`
}

// UsernamesResponse lists every profile path parameter.
type UsernamesResponse struct {
	Usernames []string `json:"usernames"`
}

// ChallengesResponse lists the challenges one user authored.
type ChallengesResponse struct {
	Username   string                 `json:"username"`
	Challenges []repository.Challenge `json:"challenges"`
}

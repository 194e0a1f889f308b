package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/challenge"
	"github.com/codecrafters-dev/platform/internal/db/repository"
	"github.com/codecrafters-dev/platform/internal/profile"
	"github.com/codecrafters-dev/platform/internal/schema"
	"github.com/codecrafters-dev/platform/internal/submission"
	httperrors "github.com/codecrafters-dev/platform/pkg/http/errors"
)

// ErrUnauthenticated is returned before any call that needs a token is sent without one.
var ErrUnauthenticated = errors.New("an access token is required for this command")

// Client talks to the challenge API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger

	// Created is the challenge stored by the last successful CreateChallenge.
	Created *repository.Challenge
}

var _ submission.Backend = (*Client)(nil)

func New(baseURL, token string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "api_client").Logger(),
	}
}

// Authenticated reports whether calls carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// CreateChallenge posts the payload to the create RPC. Refusals surface as
// *submission.SubmissionError carrying the server's message.
func (c *Client) CreateChallenge(ctx context.Context, p submission.Payload) error {
	if c.token == "" {
		return &submission.SubmissionError{Reason: ErrUnauthenticated.Error(), Err: ErrUnauthenticated}
	}
	var created repository.Challenge
	if err := c.do(ctx, http.MethodPost, "/v1/challenges", challenge.RequestFromPayload(p), &created); err != nil {
		var apiErr *httperrors.APIError
		if errors.As(err, &apiErr) {
			return &submission.SubmissionError{Reason: apiErr.Error(), Err: apiErr}
		}
		return &submission.SubmissionError{Reason: "could not reach the server", Err: err}
	}
	c.Created = &created
	c.logger.Debug().Str("challenge_id", created.ID.String()).Msg("challenge created")
	return nil
}

// Options fetches the challenge type and difficulty option sets.
func (c *Client) Options(ctx context.Context) (schema.Options, error) {
	var out schema.Options
	err := c.do(ctx, http.MethodGet, "/v1/challenges/options", nil, &out)
	return out, err
}

// List fetches a page of challenges.
func (c *Client) List(ctx context.Context, limit, offset int) (challenge.ListResponse, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		values.Set("offset", fmt.Sprint(offset))
	}
	path := "/v1/challenges"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	var out challenge.ListResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Profile fetches a user's profile.
func (c *Client) Profile(ctx context.Context, username string) (profile.Profile, error) {
	var out profile.Profile
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(username), nil, &out)
	return out, err
}

// ProfileChallenges lists the challenges a user authored.
func (c *Client) ProfileChallenges(ctx context.Context, username string) ([]repository.Challenge, error) {
	var out profile.ChallengesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(username)+"/challenges", nil, &out); err != nil {
		return nil, err
	}
	return out.Challenges, nil
}

// EditBio replaces the caller's bio and returns the refreshed profile.
func (c *Client) EditBio(ctx context.Context, username, about string) (profile.Profile, error) {
	if c.token == "" {
		return profile.Profile{}, ErrUnauthenticated
	}
	var out profile.Profile
	err := c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(username)+"/about", profile.EditAboutRequest{About: about}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := httperrors.Decode(resp)
		c.logger.Debug().Int("status", resp.StatusCode).Str("code", apiErr.Code()).Str("path", path).Msg("api call failed")
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

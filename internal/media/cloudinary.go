package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/codecrafters-dev/platform/internal/submission"
)

const defaultBaseURL = "https://api.cloudinary.com"

// Recorder observes individual uploads. A nil Recorder disables recording.
type Recorder interface {
	ObserveUpload(class submission.AssetClass, outcome string, elapsed time.Duration)
}

// Config points the uploader at one storage account.
type Config struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	Timeout      time.Duration
}

// Uploader stores assets through the unsigned upload API of the storage provider.
type Uploader struct {
	baseURL    string
	cloudName  string
	preset     string
	httpClient *http.Client
	recorder   Recorder
	logger     zerolog.Logger
}

func NewUploader(cfg Config, httpClient *http.Client, recorder Recorder, logger zerolog.Logger) (*Uploader, error) {
	if cfg.CloudName == "" {
		return nil, errors.New("storage cloud name is required")
	}
	if cfg.UploadPreset == "" {
		return nil, errors.New("storage upload preset is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Uploader{
		baseURL:    baseURL,
		cloudName:  cfg.CloudName,
		preset:     cfg.UploadPreset,
		httpClient: httpClient,
		recorder:   recorder,
		logger:     logger.With().Str("component", "media").Logger(),
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Endpoint returns the upload URL for an asset class.
func (u *Uploader) Endpoint(class submission.AssetClass) string {
	return fmt.Sprintf("%s/v1_1/%s/%s/upload", u.baseURL, u.cloudName, class)
}

// Upload posts every file concurrently and returns their secure URLs in
// completion order. The first failure cancels the remaining requests.
func (u *Uploader) Upload(ctx context.Context, files []submission.AssetFile, class submission.AssetClass) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	if !class.Valid() {
		return nil, fmt.Errorf("unknown asset class %q", class)
	}

	var (
		mu   sync.Mutex
		urls = make([]string, 0, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			url, err := u.uploadOne(gctx, f, class)
			if err != nil {
				return &submission.UploadError{File: f.Name(), Class: class, Err: err}
			}
			mu.Lock()
			urls = append(urls, url)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (u *Uploader) uploadOne(ctx context.Context, f submission.AssetFile, class submission.AssetClass) (string, error) {
	start := time.Now()
	url, err := u.post(ctx, f, class)
	outcome := "success"
	if err != nil {
		outcome = "error"
		u.logger.Warn().Err(err).Str("file", f.Name()).Str("asset_class", string(class)).Msg("upload failed")
	} else {
		u.logger.Debug().Str("file", f.Name()).Str("asset_class", string(class)).Dur("elapsed", time.Since(start)).Msg("upload complete")
	}
	if u.recorder != nil {
		u.recorder.ObserveUpload(class, outcome, time.Since(start))
	}
	return url, err
}

func (u *Uploader) post(ctx context.Context, f submission.AssetFile, class submission.AssetClass) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer src.Close()
		pw.CloseWithError(writeForm(mw, f, src, u.preset))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint(class), pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload uploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode >= 300 {
		if decodeErr == nil && payload.Error != nil && payload.Error.Message != "" {
			return "", fmt.Errorf("storage rejected upload (%d): %s", resp.StatusCode, payload.Error.Message)
		}
		return "", fmt.Errorf("storage non-2xx: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode upload response: %w", decodeErr)
	}
	if payload.SecureURL == "" {
		return "", errors.New("upload response missing secure_url")
	}
	return payload.SecureURL, nil
}

func writeForm(mw *multipart.Writer, f submission.AssetFile, src io.Reader, preset string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name()))
	contentType := f.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := mw.WriteField("upload_preset", preset); err != nil {
		return err
	}
	return mw.Close()
}

package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/codecrafters-dev/platform/internal/schema"
)

// Form field names.
const (
	FieldTitle      = "title"
	FieldType       = "type"
	FieldDifficulty = "difficulty"
)

// TitleMaxLength matches the create RPC's title limit.
const TitleMaxLength = 120

// ListingPath is where a successful submit navigates.
const ListingPath = "/challenges"

// FormValues are the validated user-entered fields.
type FormValues struct {
	Title      string
	Type       schema.ChallengeType
	Difficulty schema.Difficulty
}

// Payload is the create request sent to the backend once every upload resolved.
type Payload struct {
	Title      string               `json:"title"`
	Type       schema.ChallengeType `json:"type"`
	Difficulty schema.Difficulty    `json:"difficulty"`
	BriefDesc  string               `json:"briefDesc"`
	ImagesURL  []string             `json:"imagesURL"`
	VideoURL   *string              `json:"videoURL,omitempty"`
}

// Uploader stores files of one asset class and returns their public URLs.
// An empty input resolves to an empty result.
type Uploader interface {
	Upload(ctx context.Context, files []AssetFile, class AssetClass) ([]string, error)
}

// Backend persists a challenge from a payload.
type Backend interface {
	CreateChallenge(ctx context.Context, p Payload) error
}

// Navigator performs the post-success navigation.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Options wires a Controller to its collaborators.
type Options struct {
	Catalog   schema.Catalog
	Uploader  Uploader
	Backend   Backend
	Navigator Navigator
	// UploadTimeout bounds the upload phase of one attempt; zero waits indefinitely.
	UploadTimeout time.Duration
	Observers     []Observer
	Logger        zerolog.Logger
}

// Controller drives the create-challenge flow for one page visit.
// Every state mutation goes through mu.
type Controller struct {
	form   *Form
	images *Dropzone
	videos *Dropzone

	catalog   schema.Catalog
	uploader  Uploader
	backend   Backend
	navigator Navigator
	timeout   time.Duration
	observers []Observer
	logger    zerolog.Logger

	mu         sync.Mutex
	desc       string
	busy       bool
	imageError bool
	state      State
	lastErr    error
}

func NewController(opts Options) *Controller {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = schema.DefaultCatalog
	}
	navigator := opts.Navigator
	if navigator == nil {
		navigator = NavigatorFunc(func(string) {})
	}

	c := &Controller{
		form:      NewForm(),
		images:    NewDropzone(AssetImage, ImageDropzone),
		videos:    NewDropzone(AssetVideo, VideoDropzone),
		catalog:   catalog,
		uploader:  opts.Uploader,
		backend:   opts.Backend,
		navigator: navigator,
		timeout:   opts.UploadTimeout,
		observers: opts.Observers,
		logger:    opts.Logger.With().Str("component", "submission").Logger(),
		state:     StateIdle,
	}

	types := catalog.ChallengeTypes()
	levels := catalog.Difficulties()
	typeValues := make([]string, 0, len(types))
	for _, t := range types {
		typeValues = append(typeValues, string(t))
	}
	levelValues := make([]string, 0, len(levels))
	for _, d := range levels {
		levelValues = append(levelValues, string(d))
	}

	c.form.Register(FieldTitle,
		Required(FieldTitle, "Challenge title is required"),
		MaxLength(FieldTitle, TitleMaxLength),
	)
	c.form.Register(FieldType, OneOf(FieldType, typeValues...))
	c.form.Register(FieldDifficulty, OneOf(FieldDifficulty, levelValues...))
	if len(typeValues) > 0 {
		_ = c.form.Set(FieldType, typeValues[0])
	}
	if len(levelValues) > 0 {
		_ = c.form.Set(FieldDifficulty, levelValues[0])
	}

	c.images.OnChange(func(files []AssetFile) {
		if len(files) == 0 {
			return
		}
		c.mu.Lock()
		c.imageError = false
		c.mu.Unlock()
	})

	return c
}

func (c *Controller) Form() *Form { return c.form }

func (c *Controller) Images() *Dropzone { return c.images }

func (c *Controller) Videos() *Dropzone { return c.videos }

func (c *Controller) Catalog() schema.Catalog { return c.catalog }

func (c *Controller) SetDescription(desc string) {
	c.mu.Lock()
	c.desc = desc
	c.mu.Unlock()
}

func (c *Controller) Description() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc
}

// Busy reports whether an attempt is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// ImageError reports whether the image-presence banner is showing.
func (c *Controller) ImageError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageError
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError is the failure of the most recent attempt, nil after a success.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit validates the form and images, uploads every accepted file, then
// creates the challenge. Nothing is cached between attempts.
func (c *Controller) Submit(ctx context.Context) error {
	return c.form.Submit(func(values map[string]string) error {
		return c.run(ctx, values)
	})
}

func (c *Controller) run(ctx context.Context, values map[string]string) error {
	fv, ok := parseFormValues(values)
	if !ok {
		return ErrFormIncomplete
	}

	images := c.images.AcceptedFiles()
	videos := c.videos.AcceptedFiles()

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if len(images) == 0 {
		c.imageError = true
		c.mu.Unlock()
		return ErrImagesRequired
	}
	c.busy = true
	desc := c.desc
	attempt := uuid.New()
	t := c.transitionLocked(attempt, StateUploading, nil)
	c.mu.Unlock()
	c.notify(t)

	imageURLs, videoURLs, err := c.uploadAll(ctx, images, videos)
	if err != nil {
		c.finish(attempt, StateFailed, err)
		return err
	}

	c.mu.Lock()
	t = c.transitionLocked(attempt, StateSubmitting, nil)
	c.mu.Unlock()
	c.notify(t)

	payload := Payload{
		Title:      fv.Title,
		Type:       fv.Type,
		Difficulty: fv.Difficulty,
		BriefDesc:  desc,
		ImagesURL:  imageURLs,
	}
	if len(videoURLs) > 0 {
		v := videoURLs[0]
		payload.VideoURL = &v
	}

	if err := c.backend.CreateChallenge(ctx, payload); err != nil {
		var serr *SubmissionError
		if !errors.As(err, &serr) {
			serr = &SubmissionError{Reason: err.Error(), Err: err}
		}
		c.finish(attempt, StateFailed, serr)
		return serr
	}

	c.finish(attempt, StateSucceeded, nil)
	c.navigator.Navigate(ListingPath)
	return nil
}

// uploadAll issues the image and video batches together and waits for both.
func (c *Controller) uploadAll(ctx context.Context, images, videos []AssetFile) ([]string, []string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var imageURLs, videoURLs []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		urls, err := c.uploader.Upload(gctx, images, AssetImage)
		if err != nil {
			return asUploadError(err, AssetImage)
		}
		imageURLs = urls
		return nil
	})
	g.Go(func() error {
		urls, err := c.uploader.Upload(gctx, videos, AssetVideo)
		if err != nil {
			return asUploadError(err, AssetVideo)
		}
		videoURLs = urls
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return imageURLs, videoURLs, nil
}

func (c *Controller) finish(attempt uuid.UUID, to State, err error) {
	c.mu.Lock()
	c.busy = false
	c.lastErr = err
	t := c.transitionLocked(attempt, to, err)
	c.mu.Unlock()
	c.notify(t)
}

func (c *Controller) transitionLocked(attempt uuid.UUID, to State, err error) Transition {
	t := Transition{
		AttemptID: attempt,
		From:      c.state,
		To:        to,
		At:        time.Now().UTC(),
		Err:       err,
	}
	c.state = to
	return t
}

func (c *Controller) notify(t Transition) {
	evt := c.logger.Info()
	if t.Err != nil {
		evt = c.logger.Warn().Err(t.Err)
	}
	evt.Str("attempt_id", t.AttemptID.String()).
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Msg("submission transition")

	for _, obs := range c.observers {
		obs(t)
	}
}

func parseFormValues(values map[string]string) (FormValues, bool) {
	title := strings.TrimSpace(values[FieldTitle])
	rawType := values[FieldType]
	rawDifficulty := values[FieldDifficulty]
	if title == "" || rawType == "" || rawDifficulty == "" {
		return FormValues{}, false
	}
	t, err := schema.ParseChallengeType(rawType)
	if err != nil {
		return FormValues{}, false
	}
	d, err := schema.ParseDifficulty(rawDifficulty)
	if err != nil {
		return FormValues{}, false
	}
	return FormValues{Title: title, Type: t, Difficulty: d}, true
}

func asUploadError(err error, class AssetClass) error {
	var uerr *UploadError
	if errors.As(err, &uerr) {
		return uerr
	}
	return &UploadError{Class: class, Err: err}
}

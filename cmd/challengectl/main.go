// Command challengectl creates and browses challenges from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/client"
	"github.com/codecrafters-dev/platform/internal/config"
	"github.com/codecrafters-dev/platform/internal/logging"
	"github.com/codecrafters-dev/platform/internal/media"
	"github.com/codecrafters-dev/platform/internal/schema"
	"github.com/codecrafters-dev/platform/internal/submission"
)

const usage = `usage: challengectl [-v] [-api URL] [-token TOKEN] <command> [args]

commands:
  options                       list challenge types and difficulties
  new -title T [-type T] [-difficulty D] [-desc D] -image F [-image F ...] [-video F]
                                upload assets and create a challenge
  list [-limit N] [-offset N]   list challenges
  profile <username>            show a profile and its challenges
  bio <username> <text>         replace your bio
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load("configs/.env")
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
	cfg    *config.Client
	api    *client.Client
	out    io.Writer
	logger zerolog.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	global := flag.NewFlagSet("challengectl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "verbose logging")
	global.StringVar(&cfg.APIURL, "api", cfg.APIURL, "API base URL")
	global.StringVar(&cfg.Token, "token", cfg.Token, "bearer token")
	if err := global.Parse(args); err != nil {
		return 2
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := logging.NewConsole(stderr, true).Level(level)

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return 2
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	a := &app{
		cfg:    cfg,
		api:    client.New(cfg.APIURL, cfg.Token, httpClient, logger),
		out:    stdout,
		logger: logger,
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "options":
		err = a.options(ctx)
	case "new":
		err = a.newChallenge(ctx, cmdArgs, stderr)
	case "list":
		err = a.list(ctx, cmdArgs, stderr)
	case "profile":
		err = a.profile(ctx, cmdArgs)
	case "bio":
		err = a.bio(ctx, cmdArgs)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		global.Usage()
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		var usageErr usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(stderr, usageErr)
			return 2
		}
		logger.Error().Err(err).Str("command", cmd).Msg("command failed")
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (a *app) options(ctx context.Context) error {
	opts, err := a.api.Options(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tVALUE\tLABEL")
	for _, o := range opts.Types {
		fmt.Fprintf(tw, "type\t%s\t%s\n", o.Value, o.Label)
	}
	for _, o := range opts.Difficulties {
		fmt.Fprintf(tw, "difficulty\t%s\t%s\n", o.Value, o.Label)
	}
	return tw.Flush()
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (a *app) newChallenge(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		title      = fs.String("title", "", "challenge title")
		kind       = fs.String("type", "", "challenge type (defaults to the first option)")
		difficulty = fs.String("difficulty", "", "difficulty (defaults to the first option)")
		desc       = fs.String("desc", "", "brief description")
		video      = fs.String("video", "", "walkthrough video (mp4 or mkv, at most 10 MB)")
	)
	var images stringList
	fs.Var(&images, "image", "screenshot (jpeg, png or webp); repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// nothing is uploaded for a caller the API would refuse
	if !a.api.Authenticated() {
		return client.ErrUnauthenticated
	}

	storage := a.cfg.Storage
	uploader, err := media.NewUploader(media.Config{
		BaseURL:      storage.BaseURL,
		CloudName:    storage.CloudName,
		UploadPreset: storage.UploadPreset,
		Timeout:      storage.HTTPTimeout,
	}, nil, nil, a.logger)
	if err != nil {
		return fmt.Errorf("configure storage: %w", err)
	}

	var catalog schema.Catalog
	if opts, err := a.api.Options(ctx); err == nil {
		catalog = schema.CatalogFromOptions(opts)
	} else {
		a.logger.Warn().Err(err).Msg("could not fetch options; using built-in catalog")
	}

	ctrl := submission.NewController(submission.Options{
		Catalog:       catalog,
		Uploader:      uploader,
		Backend:       a.api,
		UploadTimeout: a.cfg.UploadTimeout,
		Navigator: submission.NavigatorFunc(func(path string) {
			fmt.Fprintf(a.out, "next: %s%s\n", strings.TrimRight(a.cfg.APIURL, "/"), path)
		}),
		Observers: []submission.Observer{func(t submission.Transition) {
			a.logger.Debug().Str("attempt_id", t.AttemptID.String()).Str("state", string(t.To)).Msg("submission state")
		}},
		Logger: a.logger,
	})

	form := ctrl.Form()
	if err := form.Set(submission.FieldTitle, *title); err != nil {
		return err
	}
	if *kind != "" {
		if err := form.Set(submission.FieldType, *kind); err != nil {
			return err
		}
	}
	if *difficulty != "" {
		if err := form.Set(submission.FieldDifficulty, *difficulty); err != nil {
			return err
		}
	}
	ctrl.SetDescription(*desc)

	imageFiles, err := openAll(images)
	if err != nil {
		return err
	}
	a.warn(ctrl.Images().Drop(imageFiles...))
	if *video != "" {
		videoFile, err := submission.NewLocalFile(*video)
		if err != nil {
			return err
		}
		a.warn(ctrl.Videos().Drop(videoFile))
	}

	for _, f := range ctrl.Images().AcceptedFiles() {
		a.logger.Info().Str("file", f.Name()).Str("size", humanize.Bytes(uint64(f.Size()))).Msg("image queued")
	}
	for _, f := range ctrl.Videos().AcceptedFiles() {
		a.logger.Info().Str("file", f.Name()).Str("size", humanize.Bytes(uint64(f.Size()))).Msg("video queued")
	}

	if err := ctrl.Submit(ctx); err != nil {
		var verr *submission.ValidationError
		if errors.As(err, &verr) {
			return usageError(verr.Error())
		}
		if errors.Is(err, submission.ErrFormIncomplete) || errors.Is(err, submission.ErrImagesRequired) {
			return usageError(err.Error())
		}
		return err
	}

	if created := a.api.Created; created != nil {
		fmt.Fprintf(a.out, "created %q (%s)\n", created.Title, created.ID)
	}
	return nil
}

func openAll(paths []string) ([]submission.AssetFile, error) {
	files := make([]submission.AssetFile, 0, len(paths))
	for _, p := range paths {
		f, err := submission.NewLocalFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (a *app) warn(rejected []submission.Rejection) {
	for _, r := range rejected {
		a.logger.Warn().
			Str("file", r.File.Name()).
			Str("size", humanize.Bytes(uint64(r.File.Size()))).
			Str("reason", string(r.Reason)).
			Msg(r.Message)
	}
}

func (a *app) list(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "page size")
	offset := fs.Int("offset", 0, "page offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := a.api.List(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tTYPE\tDIFFICULTY\tIMAGES\tVIDEO\tCREATED")
	for _, c := range page.Challenges {
		hasVideo := "no"
		if c.VideoURL != nil {
			hasVideo = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", c.Title, c.Type, c.Difficulty, len(c.ImagesURL), hasVideo, humanize.Time(c.CreatedAt))
	}
	return tw.Flush()
}

func (a *app) profile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("usage: challengectl profile <username>")
	}
	p, err := a.api.Profile(ctx, args[0])
	if err != nil {
		return err
	}
	name := p.Username
	if p.Name != nil && *p.Name != "" {
		name = fmt.Sprintf("%s (@%s)", *p.Name, p.Username)
	}
	fmt.Fprintln(a.out, name)
	fmt.Fprintln(a.out, p.Bio)

	items, err := a.api.ProfileChallenges(ctx, p.Username)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s\n", english.Plural(len(items), "challenge", "challenges"))
	for _, c := range items {
		fmt.Fprintf(a.out, "  %s [%s, %s]\n", c.Title, c.Type, c.Difficulty)
	}
	return nil
}

func (a *app) bio(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("usage: challengectl bio <username> <text>")
	}
	p, err := a.api.EditBio(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, p.Bio)
	return nil
}

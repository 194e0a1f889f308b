package challenge

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/auth"
	"github.com/codecrafters-dev/platform/internal/db/repository"
	"github.com/codecrafters-dev/platform/internal/logging"
	"github.com/codecrafters-dev/platform/internal/submission"
	httperrors "github.com/codecrafters-dev/platform/pkg/http/errors"
)

// Multipart field names of the submit endpoint.
const (
	formImages = "images"
	formVideo  = "video"
	formDesc   = "briefDesc"
)

// SubmitOptions tunes the multipart submission endpoint.
type SubmitOptions struct {
	MaxMemory     int64
	MaxBodyBytes  int64
	UploadTimeout time.Duration
	// Observers returns per-attempt transition observers for a user.
	Observers func(userID uuid.UUID) []submission.Observer
}

// HTTPHandlers provides REST endpoints for challenges.
type HTTPHandlers struct {
	service  *Service
	uploader submission.Uploader
	locker   Locker
	opts     SubmitOptions
	logger   zerolog.Logger
}

func NewHTTPHandlers(service *Service, uploader submission.Uploader, locker Locker, opts SubmitOptions, logger zerolog.Logger) *HTTPHandlers {
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = 32 << 20
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 200 << 20
	}
	return &HTTPHandlers{
		service:  service,
		uploader: uploader,
		locker:   locker,
		opts:     opts,
		logger:   logger.With().Str("component", "challenge_http").Logger(),
	}
}

// Create handles POST /v1/challenges
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	created, err := h.service.Create(r.Context(), claims.UserID, req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, verr.Error(), verr.Field)
			return
		}
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("failed to create challenge")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSubmissionFailed, "Could not save challenge")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /v1/challenges?limit=&offset=
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, limit, offset, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list challenges")
		httperrors.RespondInternalError(w, "Could not list challenges")
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{Challenges: items, Limit: limit, Offset: offset})
}

// Options handles GET /v1/challenges/options
func (h *HTTPHandlers) Options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Options())
}

// NewPage handles GET /v1/challenges/new. Anonymous visitors are redirected before this runs.
func (h *HTTPHandlers) NewPage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewPageResponse{
		Options: h.service.Options(),
		Dropzones: map[string]submission.DropzoneConfig{
			string(submission.AssetImage): submission.ImageDropzone,
			string(submission.AssetVideo): submission.VideoDropzone,
		},
		ListingPath: submission.ListingPath,
	})
}

// Submit handles POST /v1/challenges/submit: a multipart form carrying the
// fields and files, driven through the same orchestrator as the client.
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	logger := logging.FromContext(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = h.logger
	}
	logger = logger.With().Str("user_id", claims.UserID.String()).Logger()

	release, err := h.locker.Acquire(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrSubmissionLocked) {
			httperrors.RespondConflict(w, httperrors.ErrCodeSubmissionInProgress, "A submission is already in progress")
			return
		}
		logger.Error().Err(err).Msg("failed to acquire submission lock")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Submission lock unavailable")
		return
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn().Err(err).Msg("failed to release submission lock")
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	if err := r.ParseMultipartForm(h.opts.MaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.RespondError(w, http.StatusRequestEntityTooLarge, httperrors.ErrCodePayloadTooLarge, "Upload is too large")
			return
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var (
		created   repository.Challenge
		attemptID uuid.UUID
	)
	observers := []submission.Observer{func(t submission.Transition) { attemptID = t.AttemptID }}
	if h.opts.Observers != nil {
		observers = append(observers, h.opts.Observers(claims.UserID)...)
	}
	ctrl := submission.NewController(submission.Options{
		Catalog:       h.service.Catalog(),
		Uploader:      h.uploader,
		Backend:       h.service.Backend(claims.UserID, func(c repository.Challenge) { created = c }),
		UploadTimeout: h.opts.UploadTimeout,
		Observers:     observers,
		Logger:        logger,
	})

	form := ctrl.Form()
	for _, field := range []string{submission.FieldTitle, submission.FieldType, submission.FieldDifficulty} {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			_ = form.Set(field, values[0])
		}
	}
	if values := r.MultipartForm.Value[formDesc]; len(values) > 0 {
		ctrl.SetDescription(values[0])
	}

	rejected := make([]RejectedFile, 0)
	rejected = append(rejected, dropFiles(ctrl.Images(), r.MultipartForm.File[formImages])...)
	rejected = append(rejected, dropFiles(ctrl.Videos(), r.MultipartForm.File[formVideo])...)

	if err := ctrl.Submit(r.Context()); err != nil {
		h.respondSubmitError(w, logger, err, rejected)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponse{
		Challenge:     created,
		AttemptID:     attemptID.String(),
		Redirect:      submission.ListingPath,
		RejectedFiles: rejected,
	})
}

func (h *HTTPHandlers) respondSubmitError(w http.ResponseWriter, logger zerolog.Logger, err error, rejected []RejectedFile) {
	var (
		verr     *submission.ValidationError
		presence *submission.AssetPresenceError
		uerr     *submission.UploadError
		serr     *submission.SubmissionError
		cverr    *ValidationError
	)
	switch {
	case errors.As(err, &verr):
		field, fieldErr := firstField(verr)
		code := httperrors.ErrCodeValidationFailed
		var rerr *submission.RequiredFieldError
		if errors.As(fieldErr, &rerr) {
			code = httperrors.ErrCodeMissingField
		}
		httperrors.RespondValidationError(w, code, fieldErr.Error(), field)
	case errors.Is(err, submission.ErrFormIncomplete):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeFormIncomplete, "Please fill all the fields")
	case errors.As(err, &presence):
		httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeImagesRequired, presence.Message, map[string]interface{}{
			"rejected_files": rejected,
		})
	case errors.Is(err, submission.ErrBusy):
		httperrors.RespondConflict(w, httperrors.ErrCodeSubmissionInProgress, "A submission is already in progress")
	case errors.As(err, &uerr):
		logger.Warn().Err(err).Msg("asset upload failed")
		httperrors.RespondErrorWithDetails(w, http.StatusBadGateway, httperrors.ErrCodeUploadFailed, "Could not upload "+uerr.File, map[string]interface{}{
			"file":        uerr.File,
			"asset_class": string(uerr.Class),
		})
	case errors.As(err, &cverr):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, cverr.Error(), cverr.Field)
	case errors.As(err, &serr):
		logger.Error().Err(err).Msg("challenge submission failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSubmissionFailed, serr.Error())
	default:
		logger.Error().Err(err).Msg("unexpected submission error")
		httperrors.RespondInternalError(w, "Submission failed")
	}
}

func dropFiles(dz *submission.Dropzone, headers []*multipart.FileHeader) []RejectedFile {
	if len(headers) == 0 {
		return nil
	}
	files := make([]submission.AssetFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, submission.NewMultipartFile(fh))
	}
	var out []RejectedFile
	for _, rej := range dz.Drop(files...) {
		out = append(out, RejectedFile{
			Name:    rej.File.Name(),
			Class:   string(dz.Class()),
			Reason:  string(rej.Reason),
			Message: rej.Message,
		})
	}
	return out
}

func firstField(verr *submission.ValidationError) (string, error) {
	names := make([]string, 0, len(verr.Fields))
	for name := range verr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], verr.Fields[names[0]]
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

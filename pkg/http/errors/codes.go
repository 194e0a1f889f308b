package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeFormIncomplete   = "form_incomplete"

	// Resource errors
	ErrCodeNotFound     = "not_found"
	ErrCodeUserNotFound = "user_not_found"
	ErrCodeConflict     = "conflict"

	// Submission errors
	ErrCodeImagesRequired       = "images_required"
	ErrCodeUploadFailed         = "upload_failed"
	ErrCodeSubmissionFailed     = "submission_failed"
	ErrCodeSubmissionInProgress = "submission_in_progress"
	ErrCodePayloadTooLarge      = "payload_too_large"

	// Profile errors
	ErrCodeNotProfileOwner = "not_profile_owner"
	ErrCodeProfileFetch    = "profile_fetch_failed"
	ErrCodeBioUpdateFailed = "bio_update_failed"
	ErrCodeChallengesFetch = "challenges_fetch_failed"

	// WebSocket errors
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)

package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// Upstream errors
	ErrServiceUnavailable = errors.New("service unavailable")
)

// User and profile errors
var (
	ErrUserNotFound            = NewCustomError(ErrResourceNotFound, "user not found")
	ErrEmailAlreadyExists      = NewCustomError(ErrConflict, "email already exists").WithCode("EMAIL_EXISTS")
	ErrEnrollmentNumberExists  = NewCustomError(ErrConflict, "enrollment number already registered").WithCode("ENROLLMENT_EXISTS")
	ErrInvalidEnrollmentNumber = NewCustomError(ErrValidationFailed, "invalid enrollment number format")
	ErrProfileNotFound         = NewCustomError(ErrResourceNotFound, "profile not found")
	ErrProfileNotVerified      = NewCustomError(ErrPermissionDenied, "profile is awaiting verification").WithCode("PROFILE_NOT_VERIFIED")
	ErrRoleNotFound            = NewCustomError(ErrResourceNotFound, "role assignment not found")
	ErrRoleAlreadyGranted      = NewCustomError(ErrConflict, "role already granted").WithCode("ROLE_EXISTS")
)

// Academic record errors
var (
	ErrAttendanceNotFound = NewCustomError(ErrResourceNotFound, "attendance record not found")
	ErrMarkNotFound       = NewCustomError(ErrResourceNotFound, "mark not found")
	ErrTimetableNotFound  = NewCustomError(ErrResourceNotFound, "timetable slot not found")
	ErrFeedbackNotFound   = NewCustomError(ErrResourceNotFound, "feedback not found")
	ErrReportNotFound     = NewCustomError(ErrResourceNotFound, "performance report not found")
	ErrClassRepNotFound   = NewCustomError(ErrResourceNotFound, "class representative not found")
	ErrClassRepExists     = NewCustomError(ErrConflict, "class already has a representative for this year").WithCode("CLASS_REP_EXISTS")
	ErrAlertNotFound      = NewCustomError(ErrResourceNotFound, "alert not found")
)

// Election errors
var (
	ErrElectionNotFound     = NewCustomError(ErrResourceNotFound, "election not found")
	ErrCandidateNotFound    = NewCustomError(ErrResourceNotFound, "candidate not found")
	ErrCandidateExists      = NewCustomError(ErrConflict, "student is already a candidate in this election").WithCode("CANDIDATE_EXISTS")
	ErrCandidateNotApproved = NewCustomError(ErrBadRequest, "candidate has not been approved")
	ErrElectionNotActive    = NewCustomError(ErrConflict, "election is not open for voting").WithCode("ELECTION_NOT_ACTIVE")
	ErrAlreadyVoted         = NewCustomError(ErrConflict, "vote already cast in this election").WithCode("ALREADY_VOTED")
)

// Placement errors
var (
	ErrPlacementNotFound   = NewCustomError(ErrResourceNotFound, "placement not found")
	ErrApplicationNotFound = NewCustomError(ErrResourceNotFound, "placement application not found")
	ErrAlreadyApplied      = NewCustomError(ErrConflict, "already applied to this placement").WithCode("ALREADY_APPLIED")
	ErrPlacementClosed     = NewCustomError(ErrConflict, "placement application deadline has passed").WithCode("PLACEMENT_CLOSED")
)

// Notice, material and file errors
var (
	ErrNoticeNotFound        = NewCustomError(ErrResourceNotFound, "notice not found")
	ErrStudyMaterialNotFound = NewCustomError(ErrResourceNotFound, "study material not found")
	ErrAttachmentNotFound    = NewCustomError(ErrResourceNotFound, "attachment not found")
	ErrFileNotFound          = NewCustomError(ErrResourceNotFound, "file not found")
	ErrUnsupportedFileType   = NewCustomError(ErrValidationFailed, "unsupported file type").WithCode("UNSUPPORTED_FILE_TYPE")
	ErrFileTooLarge          = NewCustomError(ErrValidationFailed, "file exceeds the upload size limit").WithCode("FILE_TOO_LARGE")
)

// Password reset errors
var (
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
	ErrPasswordResetTokenUsed    = errors.New("password reset token has already been used")
)

// Assistant errors
var (
	ErrAssistantNotConfigured = NewCustomError(ErrServiceUnavailable, "assistant gateway is not configured")
	ErrAssistantFailed        = NewCustomError(ErrServiceUnavailable, "assistant gateway request failed")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a new custom error for a failed validation rule on a field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same sentinel, so copies made by WithDetails still match.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Err == e.Err && t.Message == e.Message && t.Code == e.Code
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying context details.
// Sentinels are shared, so the receiver is never mutated.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrResetTokenInvalid  ErrCode = "RESET_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidRange   ErrCode = "INVALID_DATE_RANGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrUserNotFound     ErrCode = "USER_NOT_FOUND"
	ErrSelfRoleChange   ErrCode = "SELF_ROLE_CHANGE"

	// ─── Catalog & booking ─────────────────────────────────────────────
	ErrClassNotFound         ErrCode = "CLASS_NOT_FOUND"
	ErrLocationNotFound      ErrCode = "LOCATION_NOT_FOUND"
	ErrClassFull             ErrCode = "CLASS_FULL"
	ErrClassAlreadyStarted   ErrCode = "CLASS_ALREADY_STARTED"
	ErrBookingNotFound       ErrCode = "BOOKING_NOT_FOUND"
	ErrCapacityBelowEnrolled ErrCode = "CAPACITY_BELOW_ENROLLED"
	ErrBookingFailed         ErrCode = "BOOKING_FAILED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a user-facing message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "Please sign in to continue."
	case ErrTokenInvalid:
		return "Your sign-in token is invalid or has expired."
	case ErrResetTokenInvalid:
		return "This password reset link is invalid or has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Please fill out all required fields."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidRange:
		return "The date range is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "This record cannot be deleted because it is still in use."
	case ErrUserNotFound:
		return "User not found."
	case ErrSelfRoleChange:
		return "You cannot change your own role."

	// ─── Catalog & booking ─────────────────────────────────────────────
	case ErrClassNotFound:
		return "Class not found."
	case ErrLocationNotFound:
		return "Location not found."
	case ErrClassFull:
		return "Sorry, this class is fully booked."
	case ErrClassAlreadyStarted:
		return "This class has already started."
	case ErrBookingNotFound:
		return "Booking not found."
	case ErrCapacityBelowEnrolled:
		return "Capacity cannot be lower than the number of enrolled children."
	case ErrBookingFailed:
		return "Failed to create booking."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrPositionNotFound indicates that no portfolio holds a position with the given ID.
	ErrPositionNotFound = errors.New("position not found")

	// ErrAlertNotFound indicates that an alert with the given ID does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrTokenNotFound indicates that the price source returned no trading pair for a contract address.
	ErrTokenNotFound = errors.New("token not found")

	// ErrSoundNotFound indicates that no built-in or uploaded sound has the given ID.
	ErrSoundNotFound = errors.New("sound not found")

	// ErrEmailNotFound indicates that the address is not on the account.
	ErrEmailNotFound = errors.New("email address not found")

	ErrNotificationNotFound = errors.New("notification not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrLastPortfolio indicates an attempt to delete the only remaining portfolio.
	ErrLastPortfolio = errors.New("cannot delete the last portfolio")

	// ErrInvalidPrice indicates a quote that is zero, negative or not a number.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrEmailAlreadyAdded indicates a duplicate address on the account.
	ErrEmailAlreadyAdded = errors.New("Email address already added")

	// ErrEmailLimitReached indicates the account already holds the maximum number of addresses.
	ErrEmailLimitReached = errors.New("email address limit reached")

	// ErrNoVerifiedEmail indicates that email notifications cannot be enabled
	// without at least one verified address.
	ErrNoVerifiedEmail = errors.New("at least one verified email address is required")

	// ErrUnsupportedAudio indicates an uploaded clip that is not playable audio.
	ErrUnsupportedAudio = errors.New("Unsupported audio format")

	// ErrAudioTooLarge indicates an uploaded clip above the size limit.
	ErrAudioTooLarge = errors.New("audio file too large")

	// ErrBuiltInSound indicates an attempt to delete a synthesized sound.
	ErrBuiltInSound = errors.New("built-in sounds cannot be deleted")

	// ErrPermissionNotGranted indicates browser notifications are not allowed.
	ErrPermissionNotGranted = errors.New("notification permission not granted")

	// Validation errors for required fields
	ErrInvalidPortfolioID = errors.New("portfolio ID is required")
	ErrInvalidPositionID  = errors.New("position ID is required")
	ErrInvalidAlertID     = errors.New("alert ID is required")
	ErrInvalidAddress     = errors.New("contract address is required")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Authentication errors cover the admin gate and the signed-in user.
var (
	// ErrInvalidCredentials indicates a wrong admin password.
	ErrInvalidCredentials = errors.New("invalid password")

	// ErrSessionExpired indicates an admin token that is malformed or older than its TTL.
	ErrSessionExpired = errors.New("admin session expired or invalid")

	// ErrNotSignedIn indicates an operation that needs a signed-in user.
	ErrNotSignedIn = errors.New("no user signed in")

	// ErrUnknownAdminEmail indicates a password reset request for an address that is not the admin's.
	ErrUnknownAdminEmail = errors.New("email is not the admin address")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// ErrHostedStoreDisabled indicates the hosted tier is not configured.
	ErrHostedStoreDisabled = errors.New("hosted store is not configured")

	// ErrPriceSource indicates a transport or decoding failure talking to the price API.
	ErrPriceSource = errors.New("price source request failed")

	// ErrCycleInProgress indicates a price cycle was triggered while another was still running.
	ErrCycleInProgress = errors.New("price cycle already in progress")

	// ErrLoopStarted indicates Start was called on a running price loop.
	ErrLoopStarted = errors.New("price loop already started")

	ErrFailedToPersist  = errors.New("failed to persist data")
	ErrFailedToRetrieve = errors.New("failed to retrieve data")
)

package errs

// Error taxonomy. Codes are stable; REST handlers map them onto HTTP
// statuses, the gateway logs them as refusal reasons.
var (
	// ValidationError family: client sent an unusable request.
	ErrArgs      = New(1001, "invalid argument")
	ErrDuplicate = New(1002, "username already exists")

	// AuthRejection family: terminal for the connection attempt.
	ErrBadCredential  = New(1101, "invalid credentials")
	ErrPlayerNotFound = New(1102, "player not found")

	// NotFound on REST lookup paths.
	ErrNotFound = New(1404, "record not found")

	// StoreFailure: persistence layer unavailable, fatal to the request.
	ErrStore = New(1500, "storage failure")
)

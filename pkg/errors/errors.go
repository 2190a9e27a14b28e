package errors

var (
	// ErrTimeoutExceeded is returned when graceful timeout period exceeds.
	ErrTimeoutExceeded = New("Timeout exceeded")
	// ErrInvalidForkCount is returned when a plan is requested for less than one fork.
	ErrInvalidForkCount = New("fork count must be at least 1")
	// ErrInvalidForkIndex is returned when a fork outside [0, forkCount) is queried.
	ErrInvalidForkIndex = New("fork index out of range")
	// ErrPlanNotGenerated is returned when a plan is queried before it was generated.
	ErrPlanNotGenerated = New("test plan has not been generated")
	// ErrPlanAlreadyGenerated is returned when a plan is generated twice or sources are
	// added after planning.
	ErrPlanAlreadyGenerated = New("test plan has already been generated")
	// ErrOverlappingPrefixes is returned when two prefixes of the same task claim the same tests.
	ErrOverlappingPrefixes = New("overlapping test prefixes for task")
	// ErrPlanInvariant is returned when packing did not place every bucket exactly once.
	ErrPlanInvariant = New("bucket packing lost or duplicated buckets")
	// ErrInvalidQueuePayload is returned when type assertion fails in queue producer.
	ErrInvalidQueuePayload = New("Invalid Queue Payload")
	// ErrPublishingDisabled is returned when a plan is to be published but no kafka brokers are configured.
	ErrPublishingDisabled = New("plan publishing is not configured")
	// ErrAzureConfig is returned when missing values in azure blob config
	ErrAzureConfig = New("missing values in azure blob config")
	// ErrEmptyManifest is returned when a plan manifest lists no test sources.
	ErrEmptyManifest = New("manifest has no sources")
	// ErrMalformedTimings is returned when a timing history file cannot be parsed.
	ErrMalformedTimings = New("malformed timing history")
	// ErrInvalidLoggerInstance is returned when logger instance is not supported.
	ErrInvalidLoggerInstance = New("Invalid logger instance")
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New("Not Found")
	// GenericErrorMessage is generic error message returned to UI
	GenericErrorMessage = New("Unexpected error. Please try again later.")
)

// Error represents a json-encoded API error.
type Error struct {
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New returns a new error message.
func New(text string) error {
	return &Error{Message: text}
}

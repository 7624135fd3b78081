package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when a caller-supplied value fails validation.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a requested option is not supported.
	Unsupported = ErrorKind("Unsupported")

	// ConflictSetting is returned when stored settings conflict with the configuration.
	ConflictSetting = ErrorKind("Conflict Setting")

	// InternalState is returned when derived state no longer satisfies its invariants.
	// Processing must stop instead of continuing on corrupted state.
	InternalState = ErrorKind("Internal State Corruption")

	Timeout         = ErrorKind("Timeout")
	OverflowUint128 = ErrorKind("overflow uint128")

	SomethingWentWrong = ErrorKind("Something went wrong")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

package cvexp

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables, and are usually returned wrapped with
// some context. The original can be recovered with errors.Cause.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned or panicked.
var (
	ErrRegisterDuplicate = Error{"Type is already registered"}
	ErrRegisterNilReturn = Error{"Function return is nil"}
	ErrUnknownType       = Error{"Type is not recognized"}

	ErrNegativeEpoch = Error{"Epoch index is negative"}
	ErrBadSchedule   = Error{"Schedule parameters are invalid"}
)

// NilArgError documents errors resulting from certain arguments provided to a function being nil.
type NilArgError struct{ string }

func (err NilArgError) Error() string {
	return err.string + " is nil"
}

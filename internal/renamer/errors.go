package renamer

import "errors"

// Kind classifies a per-file failure.
type Kind int

const (
	// KindNoFilename means the path has no final name component.
	KindNoFilename Kind = iota + 1
	// KindInvalidEncoding means the name is not valid UTF-8.
	KindInvalidEncoding
	// KindPatternMismatch means the name contains no digit run.
	KindPatternMismatch
	// KindCountParseFailure means the digit run does not fit in a uint.
	KindCountParseFailure
	// KindNoParentDirectory means the path has no parent directory.
	KindNoParentDirectory
	// KindRenameFailed means the filesystem rename failed or the target exists.
	KindRenameFailed
)

// String returns the user-facing message for the kind.
func (k Kind) String() string {
	switch k {
	case KindNoFilename:
		return "No filename"
	case KindInvalidEncoding:
		return "can't convert to string"
	case KindPatternMismatch:
		return "Doesn't match regex"
	case KindCountParseFailure:
		return "Cannot parse count"
	case KindNoParentDirectory:
		return "Can't get parent"
	case KindRenameFailed:
		return "Cannot rename"
	default:
		return "Unknown error"
	}
}

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrNoFilename        = errors.New(KindNoFilename.String())
	ErrInvalidEncoding   = errors.New(KindInvalidEncoding.String())
	ErrPatternMismatch   = errors.New(KindPatternMismatch.String())
	ErrCountParseFailure = errors.New(KindCountParseFailure.String())
	ErrNoParentDirectory = errors.New(KindNoParentDirectory.String())
	ErrRenameFailed      = errors.New(KindRenameFailed.String())
)

func (k Kind) sentinel() error {
	switch k {
	case KindNoFilename:
		return ErrNoFilename
	case KindInvalidEncoding:
		return ErrInvalidEncoding
	case KindPatternMismatch:
		return ErrPatternMismatch
	case KindCountParseFailure:
		return ErrCountParseFailure
	case KindNoParentDirectory:
		return ErrNoParentDirectory
	case KindRenameFailed:
		return ErrRenameFailed
	default:
		return nil
	}
}

// Error is a recoverable failure for a single file. The message is the
// kind's message only; underlying OS errors are not carried.
type Error struct {
	Kind Kind
	Path string
}

func newError(kind Kind, path string) *Error {
	return &Error{Kind: kind, Path: path}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Kind.String()
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// KindOf returns the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

package cli

import (
	"errors"
	"fmt"
)

var ErrUsage = errors.New("cli usage error")

// ErrDocumentsFailed is returned when a run finished but some description
// documents could not be processed.
var ErrDocumentsFailed = errors.New("one or more documents failed")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

func documentsFailed(failed, total int) error {
	return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, failed, total)
}

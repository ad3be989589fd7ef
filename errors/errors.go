package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrInvalidDelay     = fmt.Errorf("delay must not be negative")
	ErrEmptyMessage     = fmt.Errorf("message text is empty")
	ErrUnknownCallback  = fmt.Errorf("unknown callback token")
	ErrStoreUnavailable = fmt.Errorf("message store unavailable")
)

package kernel

import "errors"

var (
	// ErrKernelPanic wraps every unrecoverable condition returned by Run.
	ErrKernelPanic = errors.New("kernel panic")
	// ErrUnknownSyscall is raised for an unrecognized id in a7.
	ErrUnknownSyscall = errors.New("unknown syscall")
	// ErrUnknownToken is raised when APPEND_TASK names no staged coroutine.
	ErrUnknownToken = errors.New("unknown staging token")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid kernel config")
)

package device

import "errors"

var (
	ErrNotInitialized     = errors.New("device not initialized")
	ErrBufferNotAllocated = errors.New("buffer not allocated")
	ErrBufferMapped       = errors.New("buffer is mapped")
	ErrBufferNotMapped    = errors.New("buffer is not mapped")
	ErrInteropRegistered  = errors.New("buffer is registered with an interop consumer")
	ErrUnknownProgram     = errors.New("unknown program")
)

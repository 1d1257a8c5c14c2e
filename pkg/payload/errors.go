package payload

import "errors"

var (
	// ErrShortFrame indicates there were not enough bytes for a frame.
	ErrShortFrame = errors.New("short frame")
	// ErrBadSync indicates the frame header does not match the sync
	// pattern. This is the benign failure raised by non-protocol
	// traffic such as bus-scanning tools.
	ErrBadSync = errors.New("invalid sync header")
	// ErrBadChecksum indicates the frame content failed CRC validation.
	ErrBadChecksum = errors.New("checksum mismatch")
)

// Error codes carried in the first field of an ERROR frame.
const (
	ErrCodeUnknownCommand = 1 // decoded frame with unrecognized verb
	ErrCodeMalformed      = 2 // valid header, corrupt content
	ErrCodeProbe          = 3 // bad sync header, likely bus probing
	ErrCodeInternal       = 4 // unexpected fault while handling
	ErrCodeRejected       = 5 // actuation refused while disabled
)

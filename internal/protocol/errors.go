package protocol

import "errors"

// ErrMalformedFrame is returned when a frame's declared length disagrees
// with the bytes available, or a record does not fit inside its frame.
// Callers drop the single malformed record and keep parsing.
var ErrMalformedFrame = errors.New("protocol: malformed frame")

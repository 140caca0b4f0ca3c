package object

import "errors"

var (
	errShortHeader      = errors.New("object: buffer shorter than header")
	errTruncatedPayload = errors.New("object: buffer truncated before end of payload")
)

package feedback

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRecipient   = errors.New("recipient not found")
	ErrNotAccepting       = errors.New("user is not accepting messages")
	ErrInvalidContent     = errors.New("invalid message content")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnauthorized       = errors.New("not authenticated as account owner")
	ErrNotFound           = errors.New("not found")
	ErrUpstreamFailed     = errors.New("suggestion stream failed")
)

// Content rejections. Both match ErrInvalidContent under errors.Is.
var (
	ErrEmptyContent = fmt.Errorf("%w: content must not be empty", ErrInvalidContent)
	ErrTooLong      = fmt.Errorf("%w: content must be no longer than %d characters", ErrInvalidContent, MaxContentLength)
)

// MaxContentLength bounds Message.Content, counted in characters.
const MaxContentLength = 300

package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrTitleNotFound     = errors.New("title not found")
	ErrStateNotFound     = errors.New("refresh state not found")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrInvalidTransition = errors.New("invalid refresh status transition")
	ErrLeaseLost         = errors.New("refresh lease lost")
)

func errInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTitle, msg)
}

package haze

import (
	"github.com/pkg/errors"
)

// ErrInvalidArgument is the single failure kind of every transform in this
// package. Returned errors wrap it with context; test with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// invalidf wraps ErrInvalidArgument with a formatted message.
func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

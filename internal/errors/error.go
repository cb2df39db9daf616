package errors

import (
	"errors"
	"fmt"
)

var (
	ErrParseFailed       = errors.New("parse failed")
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrGameNotFound      = errors.New("game not found")
	ErrEngineClosed      = errors.New("analysis engine closed")
	ErrEngineRejected    = errors.New("analysis engine rejected command")
	ErrInternal          = errors.New("internal error")
)

// ParseError describes why a game record could not be read.
// Format is one of "SGF", "NGF" or "GIB".
type ParseError struct {
	Format string
	Reason string
}

func NewParseError(format, reason string) *ParseError {
	return &ParseError{Format: format, Reason: reason}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s load error: %s", e.Format, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailed
}

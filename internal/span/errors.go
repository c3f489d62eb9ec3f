package span

import "errors"

var (
	// ErrInvalidRange is returned when a span would end before it starts.
	ErrInvalidRange = errors.New("span: end is before start")

	// ErrInvalidArgument is returned for operation parameters outside their domain.
	ErrInvalidArgument = errors.New("span: invalid argument")

	// ErrOutOfRange is returned when a timestamp falls outside the span it is applied to.
	ErrOutOfRange = errors.New("span: timestamp out of range")

	// ErrNotFound is returned by queries with no matching span.
	ErrNotFound = errors.New("span: not found")
)

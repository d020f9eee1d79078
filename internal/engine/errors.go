package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRule reports recurrence text that cannot be parsed or a non-positive step.
	ErrMalformedRule = errors.New("malformed recurrence rule")

	// ErrUnboundedAdvance reports an advance loop that hit its step cap.
	ErrUnboundedAdvance = fmt.Errorf("%w: advance exceeded step limit", ErrMalformedRule)

	// ErrInvalidBaseDate reports a record whose date is missing or impossible.
	ErrInvalidBaseDate = errors.New("invalid base date")

	// ErrCategoryUnavailable reports that a category table could not be read or written.
	ErrCategoryUnavailable = errors.New("category unavailable")

	// ErrAllCategoriesUnavailable is returned by Build when no attempted category succeeded.
	ErrAllCategoriesUnavailable = errors.New("all categories unavailable")
)

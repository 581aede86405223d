package filter

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/model"
)

// Filter errors.
var (
	ErrInvalidDateRange = errors.New("start date must be on or before end date")
	ErrUnknownOption    = errors.New("selection is not one of the available options")
)

// DateRange is an inclusive calendar-date interval.
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

// Contains reports whether d falls within the range, inclusive on both ends.
func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start, r.End)
}

// Selection holds the current choice for every filter dimension.
// Range is nil in the single-date variant; when present it is always active.
type Selection struct {
	Range    *DateRange
	Date     Constraint[civil.Date]
	City     Constraint[string]
	Category Constraint[string]
}

// ValidateRange returns an error wrapping ErrInvalidDateRange exactly when
// start is after end.
func ValidateRange(start, end civil.Date) error {
	if start.After(end) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, start, end)
	}
	return nil
}

// Validate checks the selection's date range, if it has one.
func (s Selection) Validate() error {
	if s.Range == nil {
		return nil
	}
	return ValidateRange(s.Range.Start, s.Range.End)
}

// Check validates the selection and ensures every constrained value exists
// in opts.
func (s Selection) Check(opts Options) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !opts.Contains(s) {
		return ErrUnknownOption
	}
	return nil
}

// Matches reports whether r satisfies every active predicate. Equality
// predicates are evaluated before the range predicate.
func (s Selection) Matches(r model.Record) bool {
	if !s.City.Matches(r.City) || !s.Category.Matches(r.Category) || !s.Date.Matches(r.Date) {
		return false
	}
	return s.Range == nil || s.Range.Contains(r.Date)
}

// Apply returns the records of t that satisfy sel, in table order.
// It refuses to run on an inverted date range.
func Apply(t model.Table, sel Selection) ([]model.Record, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	out := make([]model.Record, 0)
	t.Each(func(r model.Record) {
		if sel.Matches(r) {
			out = append(out, r)
		}
	})
	return out, nil
}

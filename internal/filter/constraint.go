// Package filter derives option sets from a sales table and applies
// user selections to it.
package filter

import "fmt"

// Labels shown for the unconstrained entry of each control.
const (
	AllDates      = "All Dates"
	AllCities     = "All Cities"
	AllCategories = "All Categories"
)

// Constraint restricts one filter dimension to a single value, or leaves it
// unconstrained. The zero value is Unconstrained.
type Constraint[T comparable] struct {
	value T
	set   bool
}

// Constrained returns a constraint that matches only v.
func Constrained[T comparable](v T) Constraint[T] {
	return Constraint[T]{value: v, set: true}
}

// Unconstrained returns a constraint that matches everything.
func Unconstrained[T comparable]() Constraint[T] {
	return Constraint[T]{}
}

// Value returns the constrained value and whether one is set.
func (c Constraint[T]) Value() (T, bool) {
	return c.value, c.set
}

// IsSet reports whether the constraint restricts its dimension.
func (c Constraint[T]) IsSet() bool {
	return c.set
}

// Matches reports whether v satisfies the constraint.
func (c Constraint[T]) Matches(v T) bool {
	return !c.set || c.value == v
}

// Label renders the constraint for a control, using all when unconstrained.
func (c Constraint[T]) Label(all string) string {
	if !c.set {
		return all
	}
	return fmt.Sprint(c.value)
}

// Choices returns the selectable constraints for a control: Unconstrained
// first, followed by one Constrained entry per option value.
func Choices[T comparable](values []T) []Constraint[T] {
	out := make([]Constraint[T], 0, len(values)+1)
	out = append(out, Unconstrained[T]())
	for _, v := range values {
		out = append(out, Constrained(v))
	}
	return out
}

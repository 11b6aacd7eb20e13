package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultPage is used when the page parameter is missing or unusable.
	DefaultPage = 1
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Page is a resolved offset page. Number and Limit are always positive.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the zero-based row offset of the first row on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Resolve coerces raw query values into a Page. Missing, non-numeric and
// non-positive values fall back to the defaults; limits above maxLimit are capped.
func Resolve(rawPage, rawLimit string, defaultLimit, maxLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = 1
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}

	limit := positiveOr(rawLimit, defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{
		Number: positiveOr(rawPage, DefaultPage),
		Limit:  limit,
	}
}

func positiveOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// IsLast reports whether a page of n rows ends the result set.
func (p Page) IsLast(n int) bool {
	return n < p.Limit
}

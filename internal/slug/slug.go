// Package slug derives unique URL slugs from product names.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Fallback is used when a name has no slug-able characters
	Fallback = "product"
	// MaxLength is the width of the products.slug column
	MaxLength = 200
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[-\s]+`)
)

// Checker reports whether a slug is already taken by a product other than excludeID
type Checker interface {
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}

// Slugify converts a name into a lower-case, hyphen-separated ASCII slug.
// e.g. "Crème Brûlée!" -> "creme-brulee"
func Slugify(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(runes.Predicate(isNonASCII)))
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}

	s = invalidChars.ReplaceAllString(strings.ToLower(s), "")
	s = separators.ReplaceAllString(strings.TrimSpace(s), "-")
	return truncate(strings.Trim(s, "-_"), MaxLength)
}

// truncate shortens an ASCII slug to at most n bytes without leaving a dangling separator
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-_")
}

func isNonASCII(r rune) bool {
	return r > unicode.MaxASCII
}

// Generator resolves slug collisions against existing products
type Generator struct {
	checker Checker
}

// NewGenerator creates a Generator backed by checker
func NewGenerator(checker Checker) *Generator {
	return &Generator{checker: checker}
}

// Unique returns the slug for name, appending -1, -2, ... until no product
// other than excludeID uses it.
func (g *Generator) Unique(ctx context.Context, name string, excludeID *uuid.UUID) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = Fallback
	}

	candidate := base
	for counter := 1; ; counter++ {
		exists, err := g.checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", counter)
		candidate = truncate(base, MaxLength-len(suffix)) + suffix
	}
}

// Package services: services/format.go
// Date normalization, slug generation and age computation helpers shared
// by the domain services.
package services

import (
	"regexp"
	"strings"
	"time"
)

// date layouts accepted by NormalizeDate, tried in order
var acceptedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// NormalizeDate coerces an arbitrary date value into *time.Time.
// Accepted inputs: time.Time, *time.Time, a date string in one of the
// accepted layouts, or nil. Empty and unparseable strings become nil
// rather than an error; payment dates are optional everywhere.
func NormalizeDate(value interface{}) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		for _, layout := range acceptedDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

// FormatDate renders a date for user-facing payloads (dd/mm/yyyy).
// A nil date renders as the empty string.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug: lowercased, runs of
// non-alphanumeric characters collapsed into single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

var nonFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.]+`)

// SanitizeFilename replaces every character outside [a-zA-Z0-9.] with an
// underscore so the name is safe as an object-storage key segment.
func SanitizeFilename(name string) string {
	return nonFilenameChars.ReplaceAllString(name, "_")
}

// AgeAt computes a person's age in whole years at the reference time,
// with month/day correction (a birthday later in the year has not
// happened yet).
func AgeAt(birthDate, at time.Time) int {
	age := at.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(age, 0, 0)
	if anniversary.After(at) {
		age--
	}
	return age
}

// junior membership price tier applies for ages 14 to 16 inclusive
const (
	juniorMinAge = 14
	juniorMaxAge = 16
)

// IsJuniorAge reports whether the given age falls in the junior pricing
// tier (14-16 inclusive).
func IsJuniorAge(age int) bool {
	return age >= juniorMinAge && age <= juniorMaxAge
}

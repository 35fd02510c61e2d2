package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()
)

// Sanitize cleans rich text such as question and answer bodies.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}

// StripTags removes all markup; used for titles and other plain fields.
func StripTags(input string) string {
	return strings.TrimSpace(stripper.Sanitize(input))
}

package middleware

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching the api_sites schema.
const (
	MaxSourceKeyLen   = 32 // api_sites.key VARCHAR(32)
	MaxCategoryKeyLen = 64 // characters, not bytes
)

// sourceKeyRe matches source keys: alphanumeric, dash, underscore.
var sourceKeyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateSourceKey checks that a source key is well-formed.
func ValidateSourceKey(key string) (string, string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "source key is required"
	}
	if len(key) > MaxSourceKeyLen {
		return "", "source key must be at most 32 characters"
	}
	if !sourceKeyRe.MatchString(key) {
		return "", "source key contains invalid characters"
	}
	return key, ""
}

// ValidateCategoryKey checks a category key. Keys are free-text
// classification tags, so any printable text is accepted.
func ValidateCategoryKey(key string) (string, string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "category key is required"
	}
	if !utf8.ValidString(key) {
		return "", "category key must be valid UTF-8"
	}
	if utf8.RuneCountInString(key) > MaxCategoryKeyLen {
		return "", "category key must be at most 64 characters"
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return "", "category key contains control characters"
		}
	}
	return key, ""
}

package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// tagPattern matches plain HTML element names.
	tagPattern = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

	// classPattern matches a single CSS class token.
	classPattern = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*$`)

	// keyPattern matches preference keys and attribute names.
	keyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateTagName checks that a wrapper tag is a bare element name.
func ValidateTagName(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag name cannot be empty")
	}
	if len(tag) > 32 {
		return fmt.Errorf("tag name too long: %d characters", len(tag))
	}
	if !tagPattern.MatchString(tag) {
		return fmt.Errorf("tag name contains invalid characters: %q", tag)
	}
	if tag == "script" || tag == "style" {
		return fmt.Errorf("tag %q cannot wrap a player", tag)
	}
	return nil
}

// ValidateClass checks a space separated list of CSS class names.
// An empty list is valid.
func ValidateClass(class string) error {
	for _, c := range strings.Fields(class) {
		if !classPattern.MatchString(c) {
			return fmt.Errorf("class contains invalid characters: %q", c)
		}
	}
	return nil
}

// ValidateKey checks that a preference key contains only safe characters.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if len(key) > 128 {
		return fmt.Errorf("key too long: %d characters", len(key))
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("key contains invalid characters: %q", key)
	}
	return nil
}

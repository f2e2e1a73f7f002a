package domain

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxEventSize bounds events received from outside the process.
	DefaultMaxEventSize = 256
	// EnvMaxEventSize overrides DefaultMaxEventSize.
	EnvMaxEventSize = "NEST_MAX_EVENT_SIZE"
)

// SanitizeEvent cleans an event received from an untrusted source: it rejects
// oversized or invalid UTF-8 input and strips control characters and
// surrounding spaces. What is left may be EmptyEvent, which rules can name.
func SanitizeEvent(event string) (string, error) {
	if limit := maxEventSize(); len(event) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInvalidEvent, len(event), limit)
	}
	if !utf8.ValidString(event) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidEvent)
	}
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, event))
	return clean, nil
}

func maxEventSize() int {
	if val := os.Getenv(EnvMaxEventSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxEventSize
}

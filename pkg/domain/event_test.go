package domain_test

import (
	"strings"
	"testing"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeEvent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "select", "select"},
		{"Trimmed", "  ok\n", "ok"},
		{"ANSI Code", "\x1b[31mred", "[31mred"},
		{"Null Byte", "a\x00b", "ab"},
		{"Wildcard", "*", "*"},
		{"Empty", "", domain.EmptyEvent},
		{"Only Control", "\x07\x1b", domain.EmptyEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.SanitizeEvent(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeEvent_Rejects(t *testing.T) {
	for name, input := range map[string]string{
		"Too Large":    strings.Repeat("a", domain.DefaultMaxEventSize+1),
		"Invalid UTF8": "\xff\xfe",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := domain.SanitizeEvent(input)
			assert.ErrorIs(t, err, domain.ErrInvalidEvent)
		})
	}
}

func TestSanitizeEvent_EnvLimit(t *testing.T) {
	t.Setenv(domain.EnvMaxEventSize, "4")
	_, err := domain.SanitizeEvent("abcde")
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
	_, err = domain.SanitizeEvent("abcd")
	assert.NoError(t, err)
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips single leading plus",
			input:    "+6281234567890",
			expected: "6281234567890",
		},
		{
			name:     "no plus left untouched",
			input:    "6281234567890",
			expected: "6281234567890",
		},
		{
			name:     "only first plus stripped",
			input:    "++62812",
			expected: "+62812",
		},
		{
			name:     "interior plus preserved",
			input:    "62+812",
			expected: "62+812",
		},
		{
			name:     "spaces and dashes preserved",
			input:    "+62 812-345",
			expected: "62 812-345",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "lone plus",
			input:    "+",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{name: "valid number", phone: "6281234567890", wantErr: false},
		{name: "valid with plus", phone: "+6281234567890", wantErr: false},
		{name: "empty", phone: "", wantErr: true},
		{name: "letters", phone: "62abc", wantErr: true},
		{name: "too long", phone: "123456789012345678901", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhoneNumber(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

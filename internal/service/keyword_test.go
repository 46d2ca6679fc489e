package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotify/internal/models"
)

type fakeSiteLookup struct {
	sites map[string]*models.Site
	err   error
}

func (f *fakeSiteLookup) GetSiteByAbbr(ctx context.Context, abbr string) (*models.Site, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sites[abbr], nil
}

func newFakeSites() *fakeSiteLookup {
	return &fakeSiteLookup{
		sites: map[string]*models.Site{
			"ptp": {Name: "PTP", SiteName: "Pusaka Tanah Persada", SiteAbbr: "ptp"},
		},
	}
}

func TestIsAttendanceKeyword(t *testing.T) {
	for _, kw := range []string{"in", "checkin", "out", "checkout", "masuk", "pulang"} {
		assert.True(t, IsAttendanceKeyword(kw), kw)
		assert.True(t, IsAttendanceKeyword("  "+kw+"  "))
		assert.True(t, IsAttendanceKeyword(strings.ToUpper(kw)))
	}
	assert.False(t, IsAttendanceKeyword("hello"))
	assert.False(t, IsAttendanceKeyword("check in"))
	assert.False(t, IsAttendanceKeyword(""))
}

func TestParseCommand(t *testing.T) {
	sites := newFakeSites()

	tests := []struct {
		name     string
		text     string
		expected Command
	}{
		{
			name:     "production command",
			text:     "production ptp 2025",
			expected: Command{Keyword: "production", SiteName: "Pusaka Tanah Persada", Year: "2025"},
		},
		{
			name:     "uppercase input lowered",
			text:     "STOCKPILE PTP 2024",
			expected: Command{Keyword: "stockpile", SiteName: "Pusaka Tanah Persada", Year: "2024"},
		},
		{
			name:     "extra whitespace tolerated",
			text:     "  production   ptp   2025 ",
			expected: Command{Keyword: "production", SiteName: "Pusaka Tanah Persada", Year: "2025"},
		},
		{
			name:     "trailing tokens ignored",
			text:     "production ptp 2025 please",
			expected: Command{Keyword: "production", SiteName: "Pusaka Tanah Persada", Year: "2025"},
		},
		{name: "too few tokens", text: "production ptp"},
		{name: "year not four digits", text: "production ptp 25"},
		{name: "year not numeric", text: "production ptp year"},
		{name: "unknown site", text: "production xyz 2025"},
		{name: "empty input", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(context.Background(), tt.text, sites)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
			assert.Equal(t, tt.expected == Command{}, cmd.IsZero())
		})
	}
}

func TestParseCommandLookupError(t *testing.T) {
	sites := &fakeSiteLookup{err: fmt.Errorf("store unavailable")}

	_, err := ParseCommand(context.Background(), "production ptp 2025", sites)
	assert.Error(t, err)
}

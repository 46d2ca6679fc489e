package service

import (
	"context"
	"regexp"
	"strings"

	"wanotify/internal/models"
)

// Chatbot command keywords.
const (
	KeywordProduction = "production"
	KeywordStockpile  = "stockpile"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// attendanceKeywords short-circuit text handling to the automation webhook.
var attendanceKeywords = map[string]struct{}{
	"in":       {},
	"checkin":  {},
	"out":      {},
	"checkout": {},
	"masuk":    {},
	"pulang":   {},
}

// IsAttendanceKeyword reports whether a text body is an attendance command.
func IsAttendanceKeyword(text string) bool {
	_, ok := attendanceKeywords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// SiteLookup resolves a site abbreviation to a site record.
type SiteLookup interface {
	GetSiteByAbbr(ctx context.Context, abbr string) (*models.Site, error)
}

// Command is a parsed chatbot command: `keyword site-code year`.
type Command struct {
	Keyword  string
	SiteName string
	Year     string
}

// ParseCommand matches free text against the command grammar: at least three
// whitespace-separated tokens, a four-digit year, and a known site
// abbreviation. The zero Command signals no match; lookup errors surface so
// the caller can distinguish "unknown site" from "store unavailable".
func ParseCommand(ctx context.Context, text string, sites SiteLookup) (Command, error) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) < 3 {
		return Command{}, nil
	}

	keyword, abbr, year := tokens[0], tokens[1], tokens[2]

	if !yearPattern.MatchString(year) {
		return Command{}, nil
	}

	site, err := sites.GetSiteByAbbr(ctx, abbr)
	if err != nil {
		return Command{}, err
	}
	if site == nil {
		return Command{}, nil
	}

	return Command{Keyword: keyword, SiteName: site.SiteName, Year: year}, nil
}

// IsZero reports whether the command is the no-match sentinel.
func (c Command) IsZero() bool {
	return c == Command{}
}

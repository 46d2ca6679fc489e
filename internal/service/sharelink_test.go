package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentPrintLink(t *testing.T) {
	share := NewShareLinker("https://erp.example.com/", "secret-key")

	link, filename := share.DocumentPrintLink("Sales Order", "SO-0042")

	assert.Equal(t, "SO-0042.pdf", filename)
	assert.True(t, strings.HasPrefix(link,
		"https://erp.example.com/api/method/print?doctype=Sales+Order&name=SO-0042&format=pdf&key="))

	// Same path signs identically, a different secret does not.
	link2, _ := share.DocumentPrintLink("Sales Order", "SO-0042")
	assert.Equal(t, link, link2)

	other := NewShareLinker("https://erp.example.com", "other-key")
	link3, _ := other.DocumentPrintLink("Sales Order", "SO-0042")
	assert.NotEqual(t, link, link3)
}

func TestFileLink(t *testing.T) {
	share := NewShareLinker("https://erp.example.com", "secret-key")

	tests := []struct {
		name   string
		input  string
		prefix string
	}{
		{
			name:   "absolute https URL passes through",
			input:  "https://cdn.example.com/file.pdf",
			prefix: "https://cdn.example.com/file.pdf",
		},
		{
			name:   "private path gets signed",
			input:  "/private/files/report.pdf",
			prefix: "https://erp.example.com/private/files/report.pdf?key=",
		},
		{
			name:   "relative path normalized",
			input:  "files/report.pdf",
			prefix: "https://erp.example.com/files/report.pdf?key=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(share.FileLink(tt.input), tt.prefix))
		})
	}
}

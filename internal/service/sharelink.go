package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// ShareLinker builds signed, shareable URLs for private files and rendered
// document PDFs, so template headers can reference them without exposing the
// files publicly.
type ShareLinker struct {
	publicBaseURL string
	secret        string
}

func NewShareLinker(publicBaseURL, secret string) *ShareLinker {
	return &ShareLinker{
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		secret:        secret,
	}
}

// DocumentPrintLink returns a signed link to the rendered PDF of a document,
// plus the filename the recipient sees.
func (s *ShareLinker) DocumentPrintLink(docType, docName string) (link, filename string) {
	path := fmt.Sprintf("/api/method/print?doctype=%s&name=%s&format=pdf",
		url.QueryEscape(docType), url.QueryEscape(docName))
	return s.sign(path), docName + ".pdf"
}

// FileLink returns a shareable URL for a stored file. Absolute URLs pass
// through untouched; private paths are prefixed with the public base URL and
// signed.
func (s *ShareLinker) FileLink(fileURL string) string {
	if strings.HasPrefix(fileURL, "http://") || strings.HasPrefix(fileURL, "https://") {
		return fileURL
	}
	if !strings.HasPrefix(fileURL, "/") {
		fileURL = "/" + fileURL
	}
	return s.sign(fileURL)
}

func (s *ShareLinker) sign(path string) string {
	key := s.shareKey(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return s.publicBaseURL + path + sep + "key=" + key
}

func (s *ShareLinker) shareKey(path string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(path))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}

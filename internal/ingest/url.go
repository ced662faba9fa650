package ingest

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)
	urlShape       = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&/=]*)`)
	filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)
)

// NormalizeURL turns loose input into an absolute URL. A missing scheme becomes
// https and a bare two-label host such as example.com gains a www. prefix.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("url", "please enter a URL")
	}
	if !schemePattern.MatchString(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", invalid("url", "please enter a valid URL")
	}
	if needsWWW(u.Hostname()) {
		u.Host = "www." + u.Host
	}
	return u.String(), nil
}

func needsWWW(host string) bool {
	host = strings.ToLower(host)
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return false
	}
	labels := strings.Split(host, ".")
	return len(labels) == 2 && labels[0] != "www" && labels[0] != "" && labels[1] != ""
}

// ValidateURL checks the URL shape before any network call is attempted.
func ValidateURL(normalized string) error {
	if !urlShape.MatchString(normalized) {
		return invalid("url", "please enter a valid URL")
	}
	return nil
}

// FilenameFromURL derives the library name for a fetched page: host without a
// leading www., path separators turned into dashes, a .md suffix, anything
// outside [a-z0-9.-] replaced by a dash, all lower-cased.
func FilenameFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", invalid("url", "cannot derive a file name from %q", raw)
	}
	host := u.Hostname()
	if len(host) >= 4 && strings.EqualFold(host[:4], "www.") {
		host = host[4:]
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	base := host + strings.ReplaceAll(path, "/", "-") + ".md"
	return strings.ToLower(filenameUnsafe.ReplaceAllString(base, "-")), nil
}

// PreparedURL is the outcome of PrepareURL.
type PreparedURL struct {
	URL      string
	FileName string
}

// PrepareURL normalizes, validates and names a URL in one step.
func PrepareURL(raw string) (PreparedURL, error) {
	normalized, err := NormalizeURL(raw)
	if err != nil {
		return PreparedURL{}, err
	}
	if err := ValidateURL(normalized); err != nil {
		return PreparedURL{}, err
	}
	name, err := FilenameFromURL(normalized)
	if err != nil {
		return PreparedURL{}, err
	}
	return PreparedURL{URL: normalized, FileName: name}, nil
}

// PlaceholderMarkdown is stored instead of page content when a fetch fails and
// the session is configured to keep going.
func PlaceholderMarkdown(pageURL string, cause error, at time.Time) string {
	domain := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		domain = strings.TrimPrefix(u.Hostname(), "www.")
	}
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Content from %s\n\n", domain)
	b.WriteString("## Metadata\n")
	fmt.Fprintf(&b, "- Source: %s\n", pageURL)
	fmt.Fprintf(&b, "- Fetched: %s\n", at.UTC().Format(time.RFC3339))
	b.WriteString("- Status: Error (Service unavailable)\n\n")
	b.WriteString("## Content\n")
	fmt.Fprintf(&b, "Failed to fetch content: %s\n", reason)
	return b.String()
}

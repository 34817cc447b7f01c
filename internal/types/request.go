package types

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request represents a single page or feed retrieval.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Headers are custom HTTP headers to send with the request.
	Headers http.Header
}

// NewRequest creates a new Request for an absolute http(s) URL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q: need an absolute http(s) URL", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:     u,
		Headers: make(http.Header),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// IsFeed reports whether the URL looks like a syndication document.
func (r *Request) IsFeed() bool {
	return LooksLikeXML(r.URLString())
}

// xmlIndicators mark URLs whose bodies are parsed as feeds/XML.
var xmlIndicators = []string{"rss", "xml", "feed", "export"}

// feedIndicators mark URLs the cascade routes to the feed adapter.
var feedIndicators = []string{"rss", "export", "feed"}

// LooksLikeXML reports whether a URL carries one of the XML-indicating substrings.
func LooksLikeXML(rawURL string) bool {
	return containsAny(strings.ToLower(rawURL), xmlIndicators)
}

// LooksLikeFeed reports whether a URL carries one of the feed-indicating substrings.
func LooksLikeFeed(rawURL string) bool {
	return containsAny(strings.ToLower(rawURL), feedIndicators)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

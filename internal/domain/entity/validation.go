package entity

import (
	"fmt"
	"net"
	"net/url"
)

// Browsers and feeds cap URLs around 2KB; anything longer is junk data.
const maxURLLength = 2048

// ValidateURL checks that an article URL arriving from an external
// source is a well-formed public http(s) URL.
func ValidateURL(rawURL string) error {
	switch {
	case rawURL == "":
		return &ValidationError{Field: "url", Message: "URL is required"}
	case len(rawURL) > maxURLLength:
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	// Links into loopback, link-local or RFC 1918 space are never
	// legitimate news URLs.
	host := u.Hostname()
	ip := net.ParseIP(host)
	if host == "localhost" || (ip != nil && (ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate())) {
		return &ValidationError{Field: "url", Message: "URL must not point to a private host"}
	}

	return nil
}

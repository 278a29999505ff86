package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizeURL lowercases the scheme and host, drops default ports and fragments, and
// sorts query parameters. Two links with the same normal form are fetched once.
func normalizeURL(u *url.URL) string {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if n.Scheme == "http" {
		n.Host = strings.TrimSuffix(n.Host, ":80")
	}
	if n.Scheme == "https" {
		n.Host = strings.TrimSuffix(n.Host, ":443")
	}
	n.Fragment = ""
	n.RawFragment = ""
	n.RawQuery = n.Query().Encode()
	return n.String()
}

func resolve(base, href string) (*url.URL, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, fmt.Errorf("parse href: %w", err)
	}
	return b.ResolveReference(ref), nil
}

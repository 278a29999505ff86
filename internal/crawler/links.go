package crawler

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkKind classifies an anchor on a directory index page.
type LinkKind int

// Link kinds.
const (
	LinkIgnored LinkKind = iota
	LinkDirectory
	LinkFile
)

func (k LinkKind) String() string {
	switch k {
	case LinkDirectory:
		return "directory"
	case LinkFile:
		return "file"
	default:
		return "ignored"
	}
}

var (
	directoryPattern = regexp.MustCompile(`^\d+/$`)
	filePattern      = regexp.MustCompile(`^\d+\.txt$`)
)

// Link is one classified anchor. Href is the attribute as written, URL is resolved
// against the page it was found on.
type Link struct {
	Href string
	URL  string
	Kind LinkKind
}

// Classify inspects the raw href.
func Classify(href string) LinkKind {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasSuffix(href, "/") && directoryPattern.MatchString(href):
		return LinkDirectory
	case filePattern.MatchString(href):
		return LinkFile
	default:
		return LinkIgnored
	}
}

// ExtractLinks returns the directory and file anchors on page. Anchors that classify as
// ignored or fail to resolve are left out.
func ExtractLinks(page Page) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page.URL, err)
	}
	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		kind := Classify(href)
		if kind == LinkIgnored {
			return
		}
		target, err := resolve(page.URL, href)
		if err != nil {
			return
		}
		links = append(links, Link{Href: strings.TrimSpace(href), URL: normalizeURL(target), Kind: kind})
	})
	return links, nil
}

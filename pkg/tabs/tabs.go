// Package tabs groups browser tabs by host and adds AI summaries and web
// suggestions on top of the tab list.
package tabs

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Tab is a tab descriptor supplied by the host browser.
type Tab struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"favIconUrl,omitempty"`
}

// DisplayTitle returns the title, or a stand-in for untitled tabs.
func (t Tab) DisplayTitle() string {
	if strings.TrimSpace(t.Title) == "" {
		return "Untitled Tab"
	}
	return t.Title
}

// Group is the tabs sharing one host name.
type Group struct {
	Domain string `json:"domain"`
	Tabs   []Tab  `json:"tabs"`
}

// FaviconURL returns the icon for a tab in this group, falling back to the
// public favicon service for the group's domain.
func (g Group) FaviconURL(t Tab) string {
	if t.FavIconURL != "" {
		return t.FavIconURL
	}
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(g.Domain) + "&sz=16"
}

// LoadTabs decodes a JSON array of tab descriptors.
func LoadTabs(r io.Reader) ([]Tab, error) {
	var tabs []Tab
	if err := json.NewDecoder(r).Decode(&tabs); err != nil {
		return nil, fmt.Errorf("failed to decode tabs: %w", err)
	}
	return tabs, nil
}

// Grouper groups tabs by host, skipping hosts that match an exclusion pattern.
type Grouper struct {
	excludes []glob.Glob
	patterns []string
}

// NewGrouper compiles host exclusion patterns such as "*.internal" or
// "localhost". '.' separates pattern segments, so "*.example.com" does not
// match "a.b.example.com"; use "**.example.com" for any depth.
func NewGrouper(excludePatterns ...string) (*Grouper, error) {
	g := &Grouper{}
	for _, pattern := range excludePatterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		compiled, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		g.excludes = append(g.excludes, compiled)
		g.patterns = append(g.patterns, pattern)
	}
	return g, nil
}

// Group groups tabs by host name in first-seen order. Tabs without an ID or
// URL, with a URL that does not parse, or whose host is excluded are left
// out; no tab affects another.
func (g *Grouper) Group(tabs []Tab) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, tab := range tabs {
		if tab.ID == 0 || tab.URL == "" {
			continue
		}
		host, err := Hostname(tab.URL)
		if err != nil {
			continue
		}
		if g.excluded(host) {
			continue
		}

		i, ok := index[host]
		if !ok {
			i = len(groups)
			index[host] = i
			groups = append(groups, Group{Domain: host})
		}
		groups[i].Tabs = append(groups[i].Tabs, tab)
	}

	return groups
}

func (g *Grouper) excluded(host string) bool {
	for _, pattern := range g.excludes {
		if pattern.Match(host) {
			return true
		}
	}
	return false
}

// GroupByDomain groups tabs with no exclusions.
func GroupByDomain(tabs []Tab) []Group {
	return (&Grouper{}).Group(tabs)
}

// Hostname returns the lower-cased host of an absolute URL, without port.
// URLs without a scheme are rejected. Hosts may be empty, as for about:blank.
func Hostname(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("URL %q has no scheme", raw)
	}
	return strings.ToLower(u.Hostname()), nil
}

// Filter returns the tabs whose title contains query, ignoring case.
// An empty query returns every tab.
func Filter(tabs []Tab, query string) []Tab {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tabs
	}

	var matched []Tab
	for _, tab := range tabs {
		if strings.Contains(strings.ToLower(tab.Title), query) {
			matched = append(matched, tab)
		}
	}
	return matched
}

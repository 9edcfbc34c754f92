// Package category classifies activity events into configured category
// tags ("social", "ai-assistant", ...) by matching app names and URL
// hostnames against per-tag pattern lists.
package category

import (
	"net/url"
	"sort"
	"strings"
)

// Rule holds the match patterns for one tag. App patterns are compared
// against the event's app identifier, domain patterns against the hostname
// of its URL. All comparisons are case-insensitive substring matches.
type Rule struct {
	Apps    []string
	Domains []string
}

// Categorizer is an immutable match table. Matching is order-independent:
// every rule is evaluated and an event may receive multiple tags.
type Categorizer struct {
	rules map[string]rule
}

type rule struct {
	apps    []string
	domains []string
}

func New(rules map[string]Rule) *Categorizer {
	c := &Categorizer{rules: make(map[string]rule, len(rules))}
	for tag, r := range rules {
		lowered := rule{
			apps:    lowerAll(r.Apps),
			domains: lowerAll(r.Domains),
		}
		c.rules[tag] = lowered
	}
	return c
}

func lowerAll(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		out = append(out, strings.ToLower(p))
	}
	return out
}

// Tags returns the sorted set of category tags matching the given app
// identifier and URL. An empty result is normal: untagged events still
// count toward active time, just not toward any category total.
func (c *Categorizer) Tags(app, rawURL string) []string {
	appLower := strings.ToLower(app)
	domain := hostOf(rawURL)

	var tags []string
	for tag, r := range c.rules {
		if matchAny(appLower, r.apps) || matchAny(domain, r.domains) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func matchAny(subject string, patterns []string) bool {
	if subject == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(subject, p) {
			return true
		}
	}
	return false
}

// hostOf extracts the lowercase hostname from a URL, tolerating junk input.
// Unparseable or host-less URLs match no domain rule.
func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

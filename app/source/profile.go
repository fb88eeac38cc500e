// Package source describes the newsletter being archived: where it lives,
// how its issue URLs are shaped, and where new issues are announced.
package source

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is the scrape target. The built-in default covers The Verge's
// Installer newsletter; a YAML file can point the service at another source
// with the same page structure.
type Profile struct {
	Name       string `yaml:"name"`
	BaseURL    string `yaml:"base_url"`
	ArchiveURL string `yaml:"archive_url"`
	FeedURL    string `yaml:"feed_url"`

	host         string
	issuePattern *regexp.Regexp
	datedPattern *regexp.Regexp
}

// Default returns the built-in Installer profile.
func Default() *Profile {
	p := &Profile{
		Name:       "installer",
		BaseURL:    "https://www.theverge.com",
		ArchiveURL: "https://www.theverge.com/installer-newsletter",
		FeedURL:    "https://www.theverge.com/rss/installer-newsletter/index.xml",
	}
	p.compile()
	return p
}

// Load reads a profile from a YAML file, falling back to the built-in
// default when the path is empty or the file does not exist.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Warn("Source profile file not found, using built-in default", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read source profile: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse source profile: %w", err)
	}
	if p.BaseURL == "" || p.ArchiveURL == "" {
		return nil, fmt.Errorf("source profile requires base_url and archive_url")
	}
	p.compile()

	slog.Debug("Source profile loaded", "name", p.Name, "base_url", p.BaseURL)
	return p, nil
}

func (p *Profile) compile() {
	u, err := url.Parse(p.BaseURL)
	if err == nil {
		p.host = strings.TrimPrefix(u.Host, "www.")
	}

	host := regexp.QuoteMeta(p.host)
	// Canonical issue URL shapes: /<topic>/<numeric-id>/<slug> and the dated
	// /<yyyy>/<mm>/<dd>/<numeric-id>/<slug> variant.
	p.issuePattern = regexp.MustCompile(`^https?://(?:www\.)?` + host + `/[a-z0-9-]+/\d+/[a-z0-9-]+/?$`)
	p.datedPattern = regexp.MustCompile(`^https?://(?:www\.)?` + host + `/(\d{4})/(\d{1,2})/(\d{1,2})/\d+/[a-z0-9-]+/?$`)
}

// Host returns the source hostname without a leading "www.".
func (p *Profile) Host() string {
	return p.host
}

// ResolveHref turns a leading-slash relative href into an absolute URL on
// the source domain. Absolute hrefs pass through unchanged.
func (p *Profile) ResolveHref(href string) string {
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return strings.TrimRight(p.BaseURL, "/") + href
	}
	return href
}

// IsIssueURL reports whether a URL has the canonical shape of an issue page
// on this source.
func (p *Profile) IsIssueURL(rawURL string) bool {
	return p.issuePattern.MatchString(rawURL) || p.datedPattern.MatchString(rawURL)
}

// IssueDateFromURL derives a publish date from the year/month/day embedded
// in a dated issue URL, or nil when the URL carries none.
func (p *Profile) IssueDateFromURL(rawURL string) *time.Time {
	m := p.datedPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return nil
	}
	t, err := time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	if err != nil {
		return nil
	}
	return &t
}

// Package robots answers whether a page may be fetched according to the
// site's robots.txt. Parsed rules are kept in memory per host for a limited
// time.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// maxRobotsBytes caps how much of a robots.txt is read.
const maxRobotsBytes = 512 * 1024

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one User-agent block.
type Group struct {
	Agents     []string
	Directives []Directive
	CrawlDelay *time.Duration
}

// Directive is one Allow or Disallow line with its compiled matcher.
type Directive struct {
	Pattern string
	Allow   bool
	re      *regexp.Regexp
}

func newDirective(pattern string, allow bool) Directive {
	return Directive{Pattern: pattern, Allow: allow, re: compilePattern(pattern)}
}

// Manager fetches and caches robots.txt rules.
type Manager struct {
	HTTPClient  *http.Client
	UserAgent   string
	EntryExpiry time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	rules  Rules
	expiry time.Time
}

// Allowed reports whether u may be fetched by the manager's user agent and
// the crawl delay the host asks for (zero when none). A robots.txt that is
// missing (any 4xx) allows everything. Network errors and server errors are
// returned to the caller.
func (m *Manager) Allowed(ctx context.Context, u *url.URL) (bool, time.Duration, error) {
	rules, err := m.Get(ctx, u)
	if err != nil {
		return false, 0, err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	var delay time.Duration
	if d := rules.CrawlDelayFor(m.UserAgent); d != nil {
		delay = *d
	}
	return rules.IsAllowed(m.UserAgent, path), delay, nil
}

// Get returns the rules for u's host, from memory when fresh.
func (m *Manager) Get(ctx context.Context, u *url.URL) (Rules, error) {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Rules{}, fmt.Errorf("robots: unsupported url %v", u)
	}
	key := u.Scheme + "://" + u.Host
	m.mu.Lock()
	if m.now == nil {
		m.now = time.Now
	}
	if ent, ok := m.mem[key]; ok && m.now().Before(ent.expiry) {
		m.mu.Unlock()
		return ent.rules, nil
	}
	m.mu.Unlock()

	rules, err := m.fetch(ctx, key+"/robots.txt")
	if err != nil {
		return Rules{}, err
	}
	m.store(key, rules)
	return rules, nil
}

func (m *Manager) fetch(ctx context.Context, robotsURL string) (Rules, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("robots: new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, fmt.Errorf("robots: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Rules{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Rules{}, fmt.Errorf("robots: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return Rules{}, fmt.Errorf("robots: read: %w", err)
	}
	return Parse(string(data)), nil
}

func (m *Manager) store(key string, rules Rules) {
	exp := m.EntryExpiry
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	m.mu.Lock()
	if m.mem == nil {
		m.mem = make(map[string]memEntry)
	}
	m.mem[key] = memEntry{rules: rules, expiry: m.now().Add(exp)}
	m.mu.Unlock()
}

// Parse reads robots.txt text. Unknown lines are ignored.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []Group
	current := Group{}
	flush := func() {
		if len(current.Agents) == 0 && len(current.Directives) == 0 && current.CrawlDelay == nil {
			return
		}
		groups = append(groups, current)
		current = Group{}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])
		switch key {
		case "user-agent", "useragent":
			if len(current.Directives) > 0 || current.CrawlDelay != nil {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			if val != "" {
				current.Directives = append(current.Directives, newDirective(val, true))
			}
		case "disallow":
			// An empty Disallow restricts nothing.
			if val != "" {
				current.Directives = append(current.Directives, newDirective(val, false))
			}
		case "crawl-delay", "crawldelay":
			if d, err := time.ParseDuration(val + "s"); err == nil && val != "" {
				current.CrawlDelay = &d
			}
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed evaluates path (which may include a query string) for
// userAgent. The most specific matching agent group applies; within it the
// longest matching pattern wins and Allow wins ties. No match allows.
func (r Rules) IsAllowed(userAgent, path string) bool {
	idx := r.selectGroup(userAgent)
	if idx < 0 {
		return true
	}
	bestScore := -1
	allowed := true
	for _, d := range r.Groups[idx].Directives {
		if d.re == nil || !d.re.MatchString(path) {
			continue
		}
		score := specificity(d.Pattern)
		if score > bestScore || (score == bestScore && d.Allow && !allowed) {
			bestScore = score
			allowed = d.Allow
		}
	}
	return allowed
}

// CrawlDelayFor returns the crawl delay of the group that applies to
// userAgent, or nil.
func (r Rules) CrawlDelayFor(userAgent string) *time.Duration {
	idx := r.selectGroup(userAgent)
	if idx < 0 {
		return nil
	}
	return r.Groups[idx].CrawlDelay
}

// selectGroup prefers the longest agent token contained in userAgent; "*"
// matches anything but loses to any named match.
func (r Rules) selectGroup(userAgent string) int {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx, bestScore := -1, -1
	for i, g := range r.Groups {
		for _, token := range g.Agents {
			score := -1
			switch {
			case token == "*":
				score = 0
			case token != "" && strings.Contains(ua, token):
				score = len(token)
			}
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
	}
	return bestIdx
}

// compilePattern turns a robots pattern into an anchored regexp. '*' matches
// any run and a trailing '$' anchors the end.
func compilePattern(pattern string) *regexp.Regexp {
	p, anchorEnd := strings.CutSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for _, part := range strings.Split(p, "*") {
		b.WriteString(regexp.QuoteMeta(part))
		b.WriteString(".*")
	}
	expr := strings.TrimSuffix(b.String(), ".*")
	if anchorEnd {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

func specificity(pattern string) int {
	return len(strings.ReplaceAll(strings.TrimSuffix(pattern, "$"), "*", ""))
}

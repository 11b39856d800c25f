package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SplitSkills turns "js, node , react" into ["js","node","react"]. Empty items are dropped.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SkillList decodes either a JSON array of strings or a comma-delimited string.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = SplitSkills(raw)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("skills must be a list or a comma separated string")
	}
	*s = SplitSkills(strings.Join(items, ","))
	return nil
}

// NormalizeURL rewrites a user-supplied link into https://host/path form.
// The scheme is forced to https, the host is lower-cased and a trailing slash
// is dropped. Blank input stays blank.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}

	lower := strings.ToLower(u)
	switch {
	case strings.HasPrefix(lower, "https://"):
		u = u[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		u = u[len("http://"):]
	case strings.HasPrefix(u, "//"):
		u = u[2:]
	}

	host, rest := u, ""
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		host, rest = u[:i], u[i:]
	}
	rest = strings.TrimRight(rest, "/")
	if host == "" {
		return ""
	}

	return "https://" + strings.ToLower(host) + rest
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

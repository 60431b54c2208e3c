// Package featureflags evaluates runtime toggles parsed from FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags understood by the API.
const (
	// RealtimeNotifications pushes follow/comment/like events over Redis and websockets.
	RealtimeNotifications = "realtime_notifications"
	// GlobalFeedCache serves the first global feed page from Redis.
	GlobalFeedCache = "global_feed_cache"
)

// Manager evaluates feature flags defined as "name=value" pairs, e.g.
// "realtime_notifications=on,global_feed_cache=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return &Manager{flags: out}
}

// Enabled reports whether name is on for userID. Values:
//   - on/true/1 and off/false/0
//   - N% for a deterministic per-user rollout; anonymous callers (userID 0) are excluded
//
// Unknown flags and a nil Manager evaluate to false.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil, pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// EnabledGlobally reports whether name is fully on, independent of any user.
func (m *Manager) EnabledGlobally(name string) bool {
	if m == nil {
		return false
	}
	switch m.flags[normalize(name)] {
	case "on", "true", "1", "100%":
		return true
	}
	return false
}

// Names returns the configured flag names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.flags))
	for k := range m.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}

// Package featureflags reads the FEATURE_FLAGS setting, e.g.
// "media_purge_on_delete=on,realtime_chat=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags consulted by the application.
const (
	// MediaPurgeOnDelete deletes media objects after the records that
	// referenced them are removed.
	MediaPurgeOnDelete = "media_purge_on_delete"
	// RealtimeChat enables the websocket endpoint and chat event fan-out.
	RealtimeChat = "realtime_chat"
)

var known = []string{MediaPurgeOnDelete, RealtimeChat}

// Checker is the read side of Manager used by the services.
type Checker interface {
	Enabled(name string, userID uint) bool
}

// Manager evaluates configured flags. A nil Manager reports every flag off.
type Manager struct {
	values map[string]string
}

// NewManager parses a comma separated name=value list. Malformed pairs are
// skipped.
func NewManager(raw string) *Manager {
	values := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return &Manager{values: values}
}

// Enabled accepts on/true/1, off/false/0 and "N%" rollouts. A rollout
// buckets users deterministically and is off for userID 0.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.values[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := rolloutPercent(value)
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// EnabledGlobally evaluates a flag that is not tied to a user. Percentage
// rollouts below 100% count as disabled.
func (m *Manager) EnabledGlobally(name string) bool {
	return m.Enabled(name, 0)
}

// Global reports every flag the application reads, evaluated without a user.
func (m *Manager) Global() map[string]bool {
	out := make(map[string]bool, len(known))
	for _, name := range known {
		out[name] = m.EnabledGlobally(name)
	}
	return out
}

// Unknown lists configured flags the application never reads, sorted.
func (m *Manager) Unknown() []string {
	if m == nil {
		return nil
	}
	var out []string
	for name := range m.values {
		if !isKnown(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func isKnown(name string) bool {
	for _, k := range known {
		if k == name {
			return true
		}
	}
	return false
}

func rolloutPercent(value string) (int, bool) {
	raw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	return pct, err == nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}

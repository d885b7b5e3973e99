// Package featureflags gates optional behavior per user from a config string.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// RealtimeNotifications allows the websocket notification feed.
	RealtimeNotifications = "realtime_notifications"
	// CommentReplies allows comments that answer another comment.
	CommentReplies = "comment_replies"
)

// defaults apply to known flags the config does not mention.
var defaults = map[string]string{
	RealtimeNotifications: "on",
	CommentReplies:        "on",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "realtime_notifications=25%,comment_replies=off"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config
// string layered over the built-in defaults.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
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

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
//
// A nil Manager enables every known flag at its default.
func (m *Manager) Enabled(name string, userID uint) bool {
	flags := defaults
	if m != nil {
		flags = m.flags
	}

	value, ok := flags[normalize(name)]
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

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	flags := defaults
	if m != nil {
		flags = m.flags
	}
	out := make(map[string]bool, len(flags))
	for name := range flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}

package emoji

import (
	"strings"
	"sync/atomic"
)

// emojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":      {"❌", "[ERR]"},
	"warning":    {"⚠️", "[WRN]"},
	"info":       {"ℹ️", "[INF]"},
	"success":    {"✅", "[OK]"},
	"statistics": {"📊", "[STATS]"},
	"target":     {"🎯", "[>]"},
	"latency":    {"🐢", "[SLOW]"},
	"network":    {"🌐", "[NET]"},
	"throttled":  {"🚦", "[429]"},
	"timeout":    {"⏱️", "[408]"},
	"watch":      {"👀", "[WATCH]"},
	"file":       {"📄", "[FILE]"},
	"folder":     {"📁", "[DIR]"},
	"tip":        {"💡", "[TIP]"},
	"number":     {"🔢", "[#]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// ForStatus picks the marker for a "status/substatus" key
func ForStatus(status string) string {
	switch {
	case strings.HasPrefix(status, "429"):
		return GetEmoji("throttled")
	case strings.HasPrefix(status, "408"):
		return GetEmoji("timeout")
	case strings.HasPrefix(status, "4"), strings.HasPrefix(status, "5"):
		return GetEmoji("error")
	default:
		return GetEmoji("success")
	}
}

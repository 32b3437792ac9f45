package cache

import (
	"strings"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// KeyAssistantReply returns the cache key for a reply to message. Case and surrounding
// whitespace do not change the key.
func KeyAssistantReply(message string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(message), " "))
	return "reply:" + common.Fingerprint(normalized)
}

package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StreamContext carries the response identity from the first frame to the
// last, including any error frame.
type StreamContext struct {
	ID           string
	Created      int64
	Model        string
	IncludeUsage bool
}

func NewStreamContext(model string, includeUsage bool) StreamContext {
	return StreamContext{
		ID:           newChatID(),
		Created:      time.Now().Unix(),
		Model:        model,
		IncludeUsage: includeUsage,
	}
}

// randomHex returns n lowercase hex characters taken from a fresh uuid.
func randomHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func newChatID() string {
	return "chatcmpl-" + randomHex(12)
}

func newFingerprint() string {
	return "fp_" + randomHex(8)
}

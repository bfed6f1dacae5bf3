package task

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a fresh task ID. IDs are opaque, high-entropy and unique
// for any realistic workspace lifetime; callers must not assume the
// repository checks for pre-existing IDs.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

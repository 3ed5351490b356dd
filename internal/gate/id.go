package gate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// newIntentID returns a printable, process-unique, monotonic-prefixed
// identifier: a hex-encoded nanosecond timestamp (so ids sort
// lexically in creation order) plus a random suffix to keep two ids
// minted in the same nanosecond apart.
func newIntentID(now time.Time) string {
	return fmt.Sprintf("pi_%s_%s", strconv.FormatInt(now.UnixNano(), 16), uuid.New().String())
}

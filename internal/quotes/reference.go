package quotes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceSuffixLen = 8

// newReference builds a human-readable reference such as DEV-2026-3F9A1C07.
func newReference(prefix string, now time.Time) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "DEV"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:referenceSuffixLen]
	return fmt.Sprintf("%s-%d-%s", prefix, now.Year(), suffix)
}

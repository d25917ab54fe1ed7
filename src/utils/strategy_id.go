package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const strategyIDSuffixLen = 9

// NewStrategyID returns "strategy_<unix millis>_<random suffix>".
// The suffix comes from a v4 UUID; uniqueness is probabilistic.
func NewStrategyID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:strategyIDSuffixLen]
	return fmt.Sprintf("strategy_%d_%s", now.UnixMilli(), suffix)
}

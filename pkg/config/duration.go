package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration rejects zero and negative durations. Timeouts,
// poll intervals, and rate-limit windows all require a positive value.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("expected a positive duration, got %v", d)
	}
	return nil
}

package entity

import "time"

// AppSettings is the single shared settings row backing quota accounting and
// the configured relevance keyword list. It is read once at the start of each
// ingestion run; the request counter is written back through a
// compare-and-increment in the settings repository so that concurrent runs
// observe quota consistently to the extent the store serializes the update.
type AppSettings struct {
	NewsAPIEnabled      bool
	NewsAPIRequestCount int
	NewsAPIDailyLimit   int
	PeriodStart         time.Time
	Keywords            []string
}

// QuotaExhausted reports whether the NewsAPI daily request quota is used up.
func (s *AppSettings) QuotaExhausted() bool {
	return s.NewsAPIRequestCount >= s.NewsAPIDailyLimit
}

// QuotaRemaining returns the number of requests left in the current period.
func (s *AppSettings) QuotaRemaining() int {
	remaining := s.NewsAPIDailyLimit - s.NewsAPIRequestCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

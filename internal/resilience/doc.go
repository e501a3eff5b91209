// Package resilience holds the fault tolerance layers wrapped around
// external calls.
//
// circuitbreaker guards the NewsAPI and GDELT clients plus the
// database handle, opening after sustained failures so a dead
// dependency stops absorbing requests. retry adds backoff with jitter
// for transient fetch errors and knows which HTTP statuses are worth
// retrying.
package resilience

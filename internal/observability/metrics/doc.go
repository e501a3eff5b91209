// Package metrics declares every Prometheus metric the application
// exports and the Record*/Update* helpers the rest of the code calls.
//
// Metrics register with the default registry via promauto and are
// scraped from the /metrics endpoint of both the API server and the
// worker. Counters cover the ingestion pipeline (fetched, stored,
// duplicate, relevant), entity resolution, and HTTP traffic; gauges
// track totals, the NewsAPI quota, and database pool state.
package metrics

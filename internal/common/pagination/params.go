package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// ParseQueryParams extracts page and limit from the request query
// string. Absent parameters take the configured defaults; parameters
// that are present must be integers and pass Validate.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{
		Page:  config.DefaultPage,
		Limit: config.DefaultLimit,
	}

	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", config.MaxLimit)
		}
		params.Limit = limit
	}

	if err := params.Validate(config); err != nil {
		return Params{}, fmt.Errorf("invalid query parameter: %w", err)
	}

	return params, nil
}

// Validate rejects params a client may not request: page below 1, or
// limit outside [1, MaxLimit].
func (p Params) Validate(config Config) error {
	if p.Page < 1 {
		return fmt.Errorf("page must be a positive integer")
	}
	if p.Limit < 1 || p.Limit > config.MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", config.MaxLimit)
	}
	return nil
}

// WithDefaults normalizes params built in code rather than parsed from
// a request: non-positive fields take the configured defaults and an
// oversized limit is capped at MaxLimit. The repository layer never
// sees a negative offset or an unbounded limit.
func (p Params) WithDefaults(config Config) Params {
	if p.Page < 1 {
		p.Page = config.DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = config.DefaultLimit
	}
	if p.Limit > config.MaxLimit {
		p.Limit = config.MaxLimit
	}
	return p
}

package pagination

// QueryParams is the repository-level window derived from client
// Params: a SQL OFFSET and LIMIT pair.
type QueryParams struct {
	Offset int
	Limit  int
}

// OffsetStrategy maps 1-based page numbers onto OFFSET/LIMIT queries.
// Services use it so the page arithmetic lives in one place instead of
// being repeated per list endpoint.
type OffsetStrategy struct{}

// CalculateQuery converts client params into the window the repository
// should fetch.
func (OffsetStrategy) CalculateQuery(params Params) QueryParams {
	return QueryParams{
		Offset: CalculateOffset(params.Page, params.Limit),
		Limit:  params.Limit,
	}
}

// BuildMetadata assembles the response metadata for a page, given the
// total row count reported by the repository.
func (OffsetStrategy) BuildMetadata(params Params, total int64) Metadata {
	return Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: CalculateTotalPages(total, params.Limit),
	}
}

// CalculateOffset converts a 1-based page number into a SQL OFFSET.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages is ceil(total/limit), with a floor of one page so
// an empty result set still reports page 1 of 1.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

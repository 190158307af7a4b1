package feed

// Sort selects the client-side ordering of the fetched page.
type Sort string

const (
	// SortRecency keeps the backend's newest-first order.
	SortRecency Sort = "new"
	// SortPopularity orders by descending upvote count.
	SortPopularity Sort = "top"
)

// DefaultPageSize is the feed page size the backend serves. SetPageSize and
// PARLO_PAGE_SIZE exist for deployments that page differently; everything
// else assumes 10.
const DefaultPageSize = 10

// Query is the value describing one feed view. Search and sort apply to the
// fetched page only; the backend knows nothing about them.
type Query struct {
	Page   int
	Search string
	Sort   Sort
	// MineOnly keeps only posts owned by the current identity, for the
	// profile's "my posts" view.
	MineOnly bool
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = SortRecency
	}
	return q
}

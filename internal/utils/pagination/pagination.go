package pagination

// Pagination represents limit/offset pagination parameters.
type Pagination struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Default values.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// New creates pagination with default values.
func New() *Pagination {
	return &Pagination{Limit: DefaultLimit}
}

// Normalize clamps the parameters to sane values.
func (p *Pagination) Normalize() {
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageInfo represents pagination info in API responses.
type PageInfo struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// Info returns pagination info for API responses.
func (p *Pagination) Info(total int64) PageInfo {
	return PageInfo{
		Limit:  p.Limit,
		Offset: p.Offset,
		Total:  total,
	}
}

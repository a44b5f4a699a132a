package repo

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a requested page. Zero values mean the defaults.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

type PageInfo struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	PageSize    int  `json:"-"`
}

// Paginate clamps p against total. A page past the end becomes the last page
// and an empty set still has one page.
func Paginate(total int, p Page) (PageInfo, int) {
	p = p.normalized()
	pages := (total + p.Size - 1) / p.Size
	if pages < 1 {
		pages = 1
	}
	current := p.Number
	if current > pages {
		current = pages
	}
	return PageInfo{
		CurrentPage: current,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     current*p.Size < total,
		HasPrevious: current > 1,
		PageSize:    p.Size,
	}, (current - 1) * p.Size
}

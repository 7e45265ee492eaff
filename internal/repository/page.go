package repository

// Page bounds a list query. Zero values fall back to the default page size.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to the allowed bounds. List queries apply it
// before hitting the database; callers that echo the page back should apply
// it too so the reported limit matches the rows actually returned.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

package models

// ContactQuery represents a list or search request over stored contacts.
type ContactQuery struct {
	Query  string `json:"query,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Fuzzy  bool   `json:"fuzzy,omitempty"`
}

// Validate normalizes limit and offset. An empty query is valid and lists contacts.
func (q *ContactQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 1000 {
		q.Limit = 1000
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

package models

// SideData holds the fields recognised on one physical side of a card.
type SideData struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

// IsEmpty reports whether nothing was recognised on the side.
func (s SideData) IsEmpty() bool {
	return s == SideData{}
}

// ParseResult is the response for a parse request: the merged record plus
// the per-side breakdowns it was built from.
type ParseResult struct {
	Contact ContactRecord `json:"contact"`
	Front   SideData      `json:"front"`
	Back    SideData      `json:"back"`
}

// ContactList is the response for a list or search request.
type ContactList struct {
	Contacts  []*Contact `json:"contacts"`
	Total     int        `json:"total"`
	Query     string     `json:"query,omitempty"`
	Tag       string     `json:"tag,omitempty"`
	QueryTime int64      `json:"query_time_ms"`
	// AutoFuzzy is set when the exact search returned nothing and the
	// results come from a fuzzy retry.
	AutoFuzzy bool `json:"auto_fuzzy,omitempty"`
}

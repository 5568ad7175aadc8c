package model

// Citation maps an inline [n] marker in a draft to its source URL.
type Citation struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Draft is one version of the report text. Version 0 is the initial
// synthesis; version n is the result of the n-th revision. Drafts are
// appended, never mutated in place.
type Draft struct {
	Version   int        `json:"version"`
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// Claim is an atomic, independently checkable factual statement extracted
// from a draft, paired with its cited source URL. One claim's failure never
// affects another's evaluation.
type Claim struct {
	ID           int    `json:"id"`
	DraftVersion int    `json:"draft_version"`
	Text         string `json:"text"`
	URL          string `json:"url"`
}

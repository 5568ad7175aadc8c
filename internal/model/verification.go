package model

// URLCheck is the layer 1 outcome: a lightweight existence probe of the
// cited URL. Accessible iff the response status is in the 200-399 range.
type URLCheck struct {
	URL        string `json:"url"`
	Accessible bool   `json:"accessible"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ContentFetch is the layer 2 outcome: full fetch and main-text extraction.
type ContentFetch struct {
	Success bool `json:"success"`
	Length  int  `json:"length"`
}

// Judgment is the layer 3 outcome: the structured verdict from the
// judgment model. Confidence is always in [0.0, 1.0].
type Judgment struct {
	Supported  bool    `json:"supported"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Quote      *string `json:"quote,omitempty"`
}

// VerificationResult aggregates the three layers for one claim. Verified is
// true iff layer 3 was reached and returned supported=true; any failure in
// layer 1 or 2 short-circuits to verified=false without invoking layer 3.
type VerificationResult struct {
	ClaimID      int           `json:"claim_id"`
	Claim        string        `json:"claim"`
	URL          string        `json:"citation_url"`
	URLCheck     URLCheck      `json:"url_check"`
	ContentFetch *ContentFetch `json:"content_fetch,omitempty"`
	Judgment     *Judgment     `json:"judgment,omitempty"`
	Verified     bool          `json:"verified"`
}

// VerificationReport is recomputed fresh every time the engine runs, once
// per draft version.
type VerificationReport struct {
	DraftVersion     int                  `json:"draft_version"`
	TotalClaims      int                  `json:"total_claims"`
	VerifiedClaims   int                  `json:"verified_claims"`
	VerificationRate float64              `json:"verification_rate"`
	Results          []VerificationResult `json:"results"`
}

// Rate returns verified/total, or 0.0 when there are no claims.
func (r *VerificationReport) Rate() float64 {
	if r.TotalClaims == 0 {
		return 0.0
	}
	return float64(r.VerifiedClaims) / float64(r.TotalClaims)
}

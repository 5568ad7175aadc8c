package model

// CritiqueIssue is one problem the critic found in a draft.
type CritiqueIssue struct {
	ClaimID     int    `json:"claim_id,omitempty"`
	Severity    string `json:"severity"` // minor, major, critical
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Critique is the structured output of the critique stage.
type Critique struct {
	Summary string          `json:"summary"`
	Issues  []CritiqueIssue `json:"issues"`
}

// RunResult is the outcome of a full pipeline run.
type RunResult struct {
	Success            bool    `json:"success"`
	SessionID          string  `json:"session_id"`
	Topic              string  `json:"topic"`
	FinalReport        string  `json:"final_report,omitempty"` // path to final artifact
	VerificationRate   float64 `json:"verification_rate"`
	RevisionIterations int     `json:"revision_iterations"`
	Error              string  `json:"error,omitempty"`
}

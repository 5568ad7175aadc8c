package model

import "time"

// Stage identifies a pipeline stage. Stages advance strictly in order;
// the revision loop re-enters StageExtract and StageVerify.
type Stage string

const (
	StageResearch Stage = "research"
	StageDraft    Stage = "draft"
	StageExtract  Stage = "extract"
	StageVerify   Stage = "verify"
	StageCritique Stage = "critique"
	StageRevise   Stage = "revise"
	StageStyle    Stage = "style"
	StageDone     Stage = "done"
	StageFailed   Stage = "failed"
)

// Status describes the lifecycle of a session.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Session is the metadata record for one pipeline run. It is created once
// and mutated only by the orchestrator advancing stage and revision count.
type Session struct {
	ID            string    `json:"session_id"`
	Topic         string    `json:"topic"`
	CreatedAt     time.Time `json:"created_at"`
	Status        Status    `json:"status"`
	CurrentStage  Stage     `json:"current_stage,omitempty"`
	RevisionCount int       `json:"revision_count"`
	LastUpdated   time.Time `json:"last_updated,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// ResearchSource is one source document produced by a research worker.
// Immutable once written to the session workspace.
type ResearchSource struct {
	ID          int       `json:"id"`
	Query       string    `json:"query"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	SourceType  string    `json:"source_type,omitempty"`
	Text        string    `json:"text"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

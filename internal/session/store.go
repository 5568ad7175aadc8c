// Package session manages the per-run workspace: a directory tree with one
// numbered subdirectory per stage. The tree is the only channel through
// which stages communicate, and it is what makes a run auditable.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ghostwriter/internal/model"
)

// Stage directory names, in pipeline order.
const (
	DirResearch       = "00_research"
	DirDraft          = "01_draft"
	DirExtraction     = "02_extraction"
	DirVerification   = "03_verification"
	DirCritique       = "04_critique"
	DirRevision       = "05_revision"
	DirReVerification = "06_re_verification"
	DirStyle          = "07_style"
)

// ContentDir holds audit copies of fetched source content under the
// verification stage directory.
const ContentDir = "content_fetched"

var stageDirs = []string{
	DirResearch,
	DirDraft,
	DirExtraction,
	DirVerification,
	filepath.Join(DirVerification, ContentDir),
	DirCritique,
	DirRevision,
	DirReVerification,
	DirStyle,
}

// Store creates and loads session workspaces under a root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at root, creating it if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the workspace root directory.
func (s *Store) Root() string {
	return s.root
}

// Create builds a fresh session workspace for topic: stage directories,
// metadata.json, and an empty transcript.
func (s *Store) Create(topic string) (*Workspace, error) {
	id := fmt.Sprintf("session_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	dir := filepath.Join(s.root, id)

	for _, stage := range stageDirs {
		if err := os.MkdirAll(filepath.Join(dir, stage), 0755); err != nil {
			return nil, fmt.Errorf("create stage dir %s: %w", stage, err)
		}
	}

	ws := &Workspace{id: id, dir: dir}

	meta := model.Session{
		ID:        id,
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
		Status:    model.StatusInitialized,
	}
	if err := ws.SaveJSON("metadata.json", meta); err != nil {
		return nil, err
	}

	ws.Log(fmt.Sprintf("Session created: %s", id))
	ws.Log(fmt.Sprintf("Topic: %s", topic))

	return ws, nil
}

// Load opens an existing session workspace.
func (s *Store) Load(id string) (*Workspace, error) {
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return &Workspace{id: id, dir: dir}, nil
}

// List returns metadata for all sessions in the workspace root, newest
// first. Directories without readable metadata are skipped.
func (s *Store) List() ([]model.Session, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read workspace root: %w", err)
	}

	var sessions []model.Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.root, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta model.Session
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		sessions = append(sessions, meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

// Workspace is one session's directory tree. Writers append new artifacts;
// no artifact is ever rewritten by a later stage.
type Workspace struct {
	id  string
	dir string

	logMu  sync.Mutex
	metaMu sync.Mutex
}

// ID returns the session identifier.
func (w *Workspace) ID() string {
	return w.id
}

// Dir returns the session's root directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// StageDir returns the absolute path of a stage directory.
func (w *Workspace) StageDir(stage string) string {
	return filepath.Join(w.dir, stage)
}

// SaveJSON writes v as indented JSON at a path relative to the session dir.
func (w *Workspace) SaveJSON(rel string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rel, err)
	}
	return w.SaveText(rel, string(data)+"\n")
}

// LoadJSON reads a JSON artifact into v.
func (w *Workspace) LoadJSON(rel string, v interface{}) error {
	raw, err := os.ReadFile(filepath.Join(w.dir, rel))
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", rel, err)
	}
	return nil
}

// SaveText writes a text artifact at a path relative to the session dir.
func (w *Workspace) SaveText(rel, content string) error {
	path := filepath.Join(w.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// LoadText reads a text artifact.
func (w *Workspace) LoadText(rel string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(w.dir, rel))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(raw), nil
}

// Exists reports whether an artifact exists.
func (w *Workspace) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(w.dir, rel))
	return err == nil
}

// Log appends a timestamped line to the session transcript. Safe for
// concurrent use by fan-out workers.
func (w *Workspace) Log(message string) {
	w.logMu.Lock()
	defer w.logMu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), message)
	f, err := os.OpenFile(filepath.Join(w.dir, "transcript.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	_, _ = f.WriteString(line)
}

// UpdateStatus records the session status and current stage in metadata.
func (w *Workspace) UpdateStatus(status model.Status, stage model.Stage) error {
	return w.updateMeta(func(meta *model.Session) {
		meta.Status = status
		if stage != "" {
			meta.CurrentStage = stage
		}
	})
}

// SetRevisionCount records how many revision iterations have run.
func (w *Workspace) SetRevisionCount(n int) error {
	return w.updateMeta(func(meta *model.Session) {
		meta.RevisionCount = n
	})
}

// SetError records the failure reason alongside the failed status.
func (w *Workspace) SetError(msg string) error {
	return w.updateMeta(func(meta *model.Session) {
		meta.Status = model.StatusFailed
		meta.CurrentStage = model.StageFailed
		meta.Error = msg
	})
}

// Metadata returns the current session record.
func (w *Workspace) Metadata() (model.Session, error) {
	var meta model.Session
	err := w.LoadJSON("metadata.json", &meta)
	return meta, err
}

// Checkpoint saves a per-stage checkpoint artifact, recording which stage
// produced which data. This is the audit trail for how the final report
// was derived.
func (w *Workspace) Checkpoint(stage string, data interface{}) {
	record := map[string]interface{}{
		"stage":     stage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      data,
	}
	if err := w.SaveJSON(fmt.Sprintf("checkpoint_%s.json", stage), record); err != nil {
		w.Log(fmt.Sprintf("Warning: checkpoint %s not saved: %v", stage, err))
		return
	}
	w.Log(fmt.Sprintf("Checkpoint saved: %s", stage))
}

func (w *Workspace) updateMeta(mutate func(*model.Session)) error {
	w.metaMu.Lock()
	defer w.metaMu.Unlock()

	var meta model.Session
	if err := w.LoadJSON("metadata.json", &meta); err != nil {
		return err
	}
	mutate(&meta)
	meta.LastUpdated = time.Now().UTC()
	return w.SaveJSON("metadata.json", meta)
}

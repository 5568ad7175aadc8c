package research

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ghostwriter/internal/model"
	"ghostwriter/internal/session"
)

// FormatSourceMarkdown renders one research source as frontmatter markdown,
// the on-disk format of the research stage.
func FormatSourceMarkdown(url, title, datePublished, dateAccessed, sourceType, excerpts, summary string) string {
	return fmt.Sprintf(`---
url: %s
title: %s
date_published: %s
date_accessed: %s
source_type: %s
---

# Key Excerpts
%s

# Summary
%s
`, url, title, datePublished, dateAccessed, sourceType, excerpts, summary)
}

// ParseSourceMarkdown parses a source document back into its fields.
func ParseSourceMarkdown(content string) map[string]string {
	fields := map[string]string{}
	var excerpts, summary []string
	inMeta := false
	section := ""

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.TrimSpace(line) == "---":
			inMeta = !inMeta
		case inMeta:
			if key, value, ok := strings.Cut(line, ":"); ok {
				fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		case strings.HasPrefix(line, "# Key Excerpts"):
			section = "excerpts"
		case strings.HasPrefix(line, "# Summary"):
			section = "summary"
		case section == "excerpts":
			excerpts = append(excerpts, line)
		case section == "summary":
			summary = append(summary, line)
		}
	}

	fields["excerpts"] = strings.TrimSpace(strings.Join(excerpts, "\n"))
	fields["summary"] = strings.TrimSpace(strings.Join(summary, "\n"))
	return fields
}

// LoadSources reads every source document from the research stage of a
// session, in filename order.
func LoadSources(ws *session.Workspace) ([]model.ResearchSource, error) {
	dir := ws.StageDir(session.DirResearch)
	paths, err := filepath.Glob(filepath.Join(dir, "source_*.md"))
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	sort.Strings(paths)

	var sources []model.ResearchSource
	for i, path := range paths {
		content, err := ws.LoadText(filepath.Join(session.DirResearch, filepath.Base(path)))
		if err != nil {
			return nil, err
		}
		fields := ParseSourceMarkdown(content)
		retrieved, _ := time.Parse("2006-01-02", fields["date_accessed"])
		sources = append(sources, model.ResearchSource{
			ID:          i + 1,
			Title:       fields["title"],
			URL:         fields["url"],
			SourceType:  fields["source_type"],
			Text:        content,
			RetrievedAt: retrieved,
		})
	}

	return sources, nil
}

package research

import (
	"fmt"
	"path/filepath"
	"testing"

	"ghostwriter/internal/session"
)

func TestFormatAndParseSourceMarkdown(t *testing.T) {
	doc := FormatSourceMarkdown(
		"https://example.com/article",
		"Example Article",
		"2025-03-10",
		"2025-08-01",
		"news",
		"- First quoted passage.\n- Second quoted passage.",
		"The article establishes the topic background.",
	)

	fields := ParseSourceMarkdown(doc)

	if fields["url"] != "https://example.com/article" {
		t.Errorf("got url %q", fields["url"])
	}
	if fields["title"] != "Example Article" {
		t.Errorf("got title %q", fields["title"])
	}
	if fields["date_published"] != "2025-03-10" {
		t.Errorf("got date_published %q", fields["date_published"])
	}
	if fields["source_type"] != "news" {
		t.Errorf("got source_type %q", fields["source_type"])
	}
	if fields["excerpts"] != "- First quoted passage.\n- Second quoted passage." {
		t.Errorf("got excerpts %q", fields["excerpts"])
	}
	if fields["summary"] != "The article establishes the topic background." {
		t.Errorf("got summary %q", fields["summary"])
	}
}

func TestParseSourceMarkdown_URLWithColons(t *testing.T) {
	doc := FormatSourceMarkdown("https://example.com:8443/a?b=c:d", "T", "", "", "other", "-", "s")
	fields := ParseSourceMarkdown(doc)
	if fields["url"] != "https://example.com:8443/a?b=c:d" {
		t.Errorf("colons in URL mangled: %q", fields["url"])
	}
}

func TestLoadSources(t *testing.T) {
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ws, err := store.Create("topic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i, url := range []string{"https://a.example.com", "https://b.example.com"} {
		doc := FormatSourceMarkdown(url, "Title", "", "2025-08-01", "news", "- q", "summary")
		rel := filepath.Join(session.DirResearch, fmt.Sprintf("source_%02d.md", i+1))
		if err := ws.SaveText(rel, doc); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// A stray file that does not match the source pattern is ignored.
	if err := ws.SaveText(filepath.Join(session.DirResearch, "notes.txt"), "ignore me"); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadSources(ws)
	if err != nil {
		t.Fatalf("load sources: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].URL != "https://a.example.com" || sources[1].URL != "https://b.example.com" {
		t.Errorf("sources out of filename order: %+v", sources)
	}
	if sources[0].ID != 1 || sources[1].ID != 2 {
		t.Errorf("ids not assigned in order: %+v", sources)
	}
	if sources[0].Text == "" {
		t.Error("full document text not carried")
	}
}

func TestLoadSources_Empty(t *testing.T) {
	store, _ := session.NewStore(t.TempDir())
	ws, err := store.Create("topic")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sources, err := LoadSources(ws)
	if err != nil {
		t.Fatalf("load sources: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %d", len(sources))
	}
}

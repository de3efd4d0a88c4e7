package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adocshq/adocs/internal/sections"
)

func testStructure() *sections.Structure {
	return &sections.Structure{Sections: []sections.Section{
		{
			Name:        "Overview",
			Description: "What the service does",
			Icon:        "📘",
			Children:    []sections.Section{{Name: "Goals"}},
		},
		{
			Name:     "Runbook",
			IsCustom: true,
			Content:  "# On call\n\nRun `adocs serve` and **stay calm**.",
		},
	}}
}

func TestRenderPreview(t *testing.T) {
	out, err := NewPreview().Render("acme/payments", testStructure())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"acme/payments",
		"Overview",
		"What the service does",
		"Goals",
		`class="badge"`,
		"<strong>stay calm</strong>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("preview missing %q", want)
		}
	}
	// Markdown content is rendered, not echoed.
	if strings.Contains(html, "# On call") {
		t.Error("markdown heading not rendered to HTML")
	}
}

func TestRenderEscapesNames(t *testing.T) {
	st := &sections.Structure{Sections: []sections.Section{
		{Name: "<script>alert(1)</script>"},
	}}
	out, err := NewPreview().Render("x", st)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<script>alert(1)</script>") {
		t.Error("section name not escaped")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preview.html")
	if err := NewPreview().WriteFile(path, "t", testStructure()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Overview") {
		t.Error("written file missing content")
	}
}

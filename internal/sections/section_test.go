package sections

import (
	"encoding/json"
	"testing"
)

func TestSortByPriorityIsStable(t *testing.T) {
	secs := []Section{
		{Name: "C", Priority: 2},
		{Name: "A", Priority: 1},
		{Name: "B", Priority: 1},
	}
	SortByPriority(secs)

	want := []string{"A", "B", "C"}
	for i, name := range want {
		if secs[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, secs[i].Name, name)
		}
	}
}

func TestValidateRejectsDuplicateSiblings(t *testing.T) {
	s := Structure{Sections: []Section{
		{Name: "Overview"},
		{Name: "Overview"},
	}}
	if err := s.Validate(); err == nil {
		t.Error("expected error for duplicate sibling names")
	}
}

func TestValidateAllowsDuplicatesAcrossLevels(t *testing.T) {
	s := Structure{Sections: []Section{
		{Name: "Overview", Children: []Section{{Name: "Overview"}}},
		{Name: "Setup"},
	}}
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsEmptyName(t *testing.T) {
	s := Structure{Sections: []Section{{Name: "Overview", Children: []Section{{Name: ""}}}}}
	if err := s.Validate(); err == nil {
		t.Error("expected error for empty child name")
	}
}

func TestJSONFieldNames(t *testing.T) {
	s := Section{
		Name:        "Runbook",
		Content:     "# Runbook",
		Description: "Ops runbook",
		Icon:        "📄",
		Priority:    2,
		IsCustom:    true,
		SourcePath:  "custom_docs/acme_api/runbook.md",
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"name", "content", "description", "icon", "priority", "is_custom", "gcs_path"} {
		if _, ok := m[field]; !ok {
			t.Errorf("serialized section missing contract field %q", field)
		}
	}
}

func TestAssignDefaultPriorities(t *testing.T) {
	secs := []Section{
		{Name: "A", Priority: 3},
		{Name: "B"},
		{Name: "C"},
	}
	AssignDefaultPriorities(secs, 10)

	if secs[0].Priority != 3 {
		t.Errorf("existing priority overwritten: got %d", secs[0].Priority)
	}
	if secs[1].Priority != 11 || secs[2].Priority != 12 {
		t.Errorf("default priorities wrong: got %d, %d", secs[1].Priority, secs[2].Priority)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Structure{Sections: []Section{{Name: "A", Children: []Section{{Name: "B"}}}}}
	copied := orig.Clone()
	copied.Sections[0].Children[0].Name = "changed"
	if orig.Sections[0].Children[0].Name != "B" {
		t.Error("clone shares child slice with original")
	}
}

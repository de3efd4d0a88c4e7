package sections

import "sort"

// Section is a single node in a documentation structure. The JSON field
// names (name, content, description, icon, priority, is_custom, gcs_path)
// are a contract with API consumers and must not change.
type Section struct {
	Name        string    `json:"name" yaml:"name"`
	Content     string    `json:"content,omitempty" yaml:"content,omitempty"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon" yaml:"icon"`
	Priority    int       `json:"priority" yaml:"priority"`
	IsCustom    bool      `json:"is_custom" yaml:"is_custom"`
	SourcePath  string    `json:"gcs_path,omitempty" yaml:"gcs_path,omitempty"`
	Children    []Section `json:"children,omitempty" yaml:"children,omitempty"`
}

// Structure is a full documentation structure: an ordered list of top-level
// sections. It serializes as {"sections": [...]}.
type Structure struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// Clone returns a deep copy of the structure.
func (s Structure) Clone() Structure {
	return Structure{Sections: cloneSections(s.Sections)}
}

func cloneSections(src []Section) []Section {
	if src == nil {
		return nil
	}
	out := make([]Section, len(src))
	for i, sec := range src {
		out[i] = sec
		out[i].Children = cloneSections(sec.Children)
	}
	return out
}

// SortByPriority orders sections by ascending priority. The sort is stable:
// sections with equal priority keep their relative order.
func SortByPriority(secs []Section) {
	sort.SliceStable(secs, func(i, j int) bool {
		return secs[i].Priority < secs[j].Priority
	})
}

// IndexByName returns the index of the first top-level section with the
// given name, or -1 if none matches.
func IndexByName(secs []Section, name string) int {
	for i, s := range secs {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// AssignDefaultPriorities fills in a position-based priority for every
// section that has none. Generated structures often arrive without
// priorities; injection strategies need a total order to sort against.
func AssignDefaultPriorities(secs []Section, base int) {
	for i := range secs {
		if secs[i].Priority == 0 {
			secs[i].Priority = base + i
		}
	}
}

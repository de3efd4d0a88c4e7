package sections

import "fmt"

// Validate checks a structure against the section schema: every section has
// a non-empty name, and names are unique within each sibling list. Children
// are validated recursively.
func (s Structure) Validate() error {
	return validateSiblings(s.Sections, "")
}

func validateSiblings(secs []Section, path string) error {
	seen := make(map[string]bool, len(secs))
	for i, sec := range secs {
		where := fmt.Sprintf("%ssections[%d]", path, i)
		if sec.Name == "" {
			return fmt.Errorf("%s: name is required", where)
		}
		if seen[sec.Name] {
			return fmt.Errorf("%s: duplicate section name %q", where, sec.Name)
		}
		seen[sec.Name] = true

		if len(sec.Children) > 0 {
			childPath := fmt.Sprintf("%s.children.", where)
			if err := validateSiblings(sec.Children, childPath); err != nil {
				return err
			}
		}
	}
	return nil
}

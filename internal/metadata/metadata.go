package metadata

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// RepoMetadata describes a repository for retrieval and generation purposes.
// It mirrors the analysis-file shape produced by the crawler: overview,
// business domain, architecture and tech stack, plus the repository URL.
type RepoMetadata struct {
	RepoURL        string         `json:"github_url" yaml:"github_url"`
	Overview       string         `json:"overview" yaml:"overview"`
	BusinessDomain string         `json:"business_domain" yaml:"business_domain"`
	Architecture   Architecture   `json:"architecture" yaml:"architecture"`
	TechStack      TechStack      `json:"tech_stack" yaml:"tech_stack"`
	Extra          map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Architecture holds the architecture description of a repository.
type Architecture struct {
	Description string `json:"description" yaml:"description"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// TechStack accepts the three shapes the analysis files use: a flat array,
// a category map, or a single string. It normalizes all of them to an
// ordered list of technology names.
type TechStack struct {
	items []string
}

// NewTechStack builds a TechStack from a flat list.
func NewTechStack(items ...string) TechStack {
	return TechStack{items: items}
}

// Items returns the normalized technology list.
func (t TechStack) Items() []string { return t.items }

func (t TechStack) String() string { return strings.Join(t.items, ", ") }

func (t TechStack) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.items)
}

func (t *TechStack) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, err := flattenTechStack(raw)
	if err != nil {
		return err
	}
	t.items = items
	return nil
}

// GobEncode lets snapshots carry the normalized list; gob skips
// unexported fields otherwise.
func (t TechStack) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(t.items)
	return buf.Bytes(), err
}

func (t *TechStack) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&t.items)
}

func (t *TechStack) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	items, err := flattenTechStack(raw)
	if err != nil {
		return err
	}
	t.items = items
	return nil
}

// flattenTechStack normalizes a decoded array/map/scalar into a flat list.
// Category keys are visited in sorted order so the result is deterministic
// regardless of the source map's iteration order.
func flattenTechStack(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		return items, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var items []string
		for _, k := range keys {
			switch val := v[k].(type) {
			case []any:
				for _, item := range val {
					items = append(items, fmt.Sprint(item))
				}
			default:
				items = append(items, fmt.Sprint(val))
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported tech_stack shape %T", raw)
	}
}

// CorpusText builds the canonical text block used for embedding. Field order
// and separators are fixed: Overview, Business Domain, Architecture, Tech
// Stack, joined by single spaces. Empty fields are omitted. The result is
// byte-for-byte reproducible for identical input.
func (m RepoMetadata) CorpusText() string {
	var parts []string
	if m.Overview != "" {
		parts = append(parts, "Overview: "+m.Overview)
	}
	if m.BusinessDomain != "" {
		parts = append(parts, "Business Domain: "+m.BusinessDomain)
	}
	if m.Architecture.Description != "" {
		parts = append(parts, "Architecture: "+m.Architecture.Description)
	}
	if len(m.TechStack.Items()) > 0 {
		parts = append(parts, "Tech Stack: "+m.TechStack.String())
	}
	return strings.Join(parts, " ")
}

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// SanitizeRepoName converts a repository URL to a path-safe name
// (owner_repo). URLs that don't look like GitHub URLs fall back to
// replacing slashes.
func SanitizeRepoName(repoURL string) string {
	if m := repoURLPattern.FindStringSubmatch(repoURL); m != nil {
		return m[1] + "_" + m[2]
	}
	return strings.ReplaceAll(strings.TrimPrefix(repoURL, "https://"), "/", "_")
}

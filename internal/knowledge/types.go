package knowledge

import (
	"sort"
	"time"

	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/sections"
)

// Record is one knowledge-base entry: a repository, its canonical metadata
// text, its ground-truth documentation structure, and the embedding of the
// metadata text.
type Record struct {
	RepoURL    string
	Metadata   metadata.RepoMetadata
	CorpusText string
	Structure  sections.Structure
	Embedding  []float32
}

// Snapshot is an immutable, point-in-time knowledge base. All records in a
// snapshot were embedded with the same model (EmbedderName/Dimensions);
// snapshots from different models must never be mixed. A snapshot is never
// mutated after Build: updates publish a new snapshot.
type Snapshot struct {
	Version      string
	EmbedderName string
	Dimensions   int
	BuiltAt      time.Time
	Records      []Record
}

// Stats summarizes a snapshot for operators.
type Stats struct {
	TotalEntries       int      `json:"total_entries"`
	UniqueTechnologies int      `json:"unique_technologies"`
	UniqueDomains      int      `json:"unique_domains"`
	TopTechnologies    []string `json:"top_technologies,omitempty"`
	Domains            []string `json:"domains,omitempty"`
	EmbedderName       string   `json:"embedder"`
	Version            string   `json:"version"`
}

// Stats computes summary statistics over the snapshot's records.
func (s *Snapshot) Stats() Stats {
	st := Stats{
		TotalEntries: len(s.Records),
		EmbedderName: s.EmbedderName,
		Version:      s.Version,
	}

	techCounts := map[string]int{}
	domains := map[string]bool{}
	for _, r := range s.Records {
		for _, tech := range r.Metadata.TechStack.Items() {
			techCounts[tech]++
		}
		if d := r.Metadata.BusinessDomain; d != "" {
			domains[d] = true
		}
	}
	st.UniqueTechnologies = len(techCounts)
	st.UniqueDomains = len(domains)
	st.TopTechnologies = topKeys(techCounts, 10)
	for d := range domains {
		st.Domains = append(st.Domains, d)
	}
	sort.Strings(st.Domains)
	if len(st.Domains) > 10 {
		st.Domains = st.Domains[:10]
	}
	return st
}

package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adocshq/adocs/internal/knowledge"
	"github.com/adocshq/adocs/internal/metadata"
)

const promptTemplate = `As a principal engineer, your task is to create the ideal documentation structure for a new software project.

Analyze the provided metadata for the new repository and use the provided examples from similar projects as a reference to ensure high quality and relevance.

The output MUST be a single, valid JSON object and nothing else. Do not add any explanatory text before or after the JSON.

### New Repository Metadata:
` + "```json\n%s\n```" + `

---

### High-Quality Documentation Examples from Similar Repositories:
%s
---

### Your Task:
Based on all the information above, generate the documentation structure JSON for the new repository.

The documentation structure should be comprehensive and include all necessary sections for the project type, technology stack, and business domain. Consider the patterns from the similar repositories but adapt them to the specific needs of this new repository.

### CRITICAL: Required JSON Format
The response MUST follow this exact structure:
` + "```json" + `
{
  "sections": [
    {
      "name": "Section Name",
      "description": "One-line summary of the section",
      "children": [
        {
          "name": "Subsection Name",
          "children": []
        }
      ]
    }
  ]
}
` + "```" + `

IMPORTANT FORMAT RULES:
1. Each section MUST be an object with a "name" property
2. "name" must be a non-empty string, unique among its siblings
3. "children" must be an array of section objects (omit or leave empty for leaf sections)
4. Do NOT use bare strings or arrays directly in the sections array

Return only the JSON structure, no additional text.`

const systemPrompt = "You are a principal engineer designing documentation structures. You respond only with valid JSON."

// Augmenter builds LLM prompts from repository metadata and retrieved
// exemplars.
type Augmenter struct{}

// BuildPrompt renders the generation prompt. Exemplars must already be
// in descending score order; their order is preserved in the prompt.
func (Augmenter) BuildPrompt(meta *metadata.RepoMetadata, exemplars []knowledge.Scored) (string, error) {
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}

	var examples strings.Builder
	if len(exemplars) == 0 {
		examples.WriteString("(no similar repositories found; rely on the metadata alone)\n")
	}
	for i, ex := range exemplars {
		structJSON, err := json.MarshalIndent(ex.Record.Structure, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding exemplar %d structure: %w", i, err)
		}
		fmt.Fprintf(&examples, "### Example %d: Similar Repo (%s)\n", i+1, ex.Record.RepoURL)
		fmt.Fprintf(&examples, "#### Similarity Score: %.3f\n", ex.Score)
		fmt.Fprintf(&examples, "#### Repository Metadata:\n%s\n", ex.Record.CorpusText)
		fmt.Fprintf(&examples, "#### Documentation Structure:\n```json\n%s\n```\n\n", structJSON)
	}

	return fmt.Sprintf(promptTemplate, metaJSON, examples.String()), nil
}

// SystemPrompt returns the fixed system message for generation requests.
func (Augmenter) SystemPrompt() string { return systemPrompt }

// repairPrompt appends the previous failure to the original prompt so the
// model can correct itself on the single repair attempt.
func repairPrompt(original, badOutput string, parseErr error) string {
	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\n---\n\nYour previous response was not a valid documentation structure.\n")
	fmt.Fprintf(&b, "Error: %v\n", parseErr)
	if badOutput != "" {
		const maxEcho = 2000
		if len(badOutput) > maxEcho {
			badOutput = badOutput[:maxEcho] + "..."
		}
		fmt.Fprintf(&b, "Previous response:\n```\n%s\n```\n", badOutput)
	}
	b.WriteString("Respond again with ONLY the corrected JSON object in the required format.")
	return b.String()
}

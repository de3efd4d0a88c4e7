package injection

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/adocshq/adocs/internal/config"
	"github.com/adocshq/adocs/internal/sections"
	"github.com/adocshq/adocs/internal/storage"
)

// Engine combines a generated documentation structure with the custom
// sections from a repository configuration. Strategies operate on the
// top level of the tree only; merge additionally reaches into a matched
// section's fields.
type Engine struct {
	store storage.ContentStore
}

// NewEngine creates an injection engine reading custom section content
// from the given store.
func NewEngine(store storage.ContentStore) *Engine {
	return &Engine{store: store}
}

// Inject applies the configured strategy. A nil config, a disabled
// repository, or enable_custom_sections=false all yield the generated
// structure unchanged.
func (e *Engine) Inject(ctx context.Context, generated *sections.Structure, cfg *config.RepositoryConfig) (*sections.Structure, error) {
	if cfg == nil || !cfg.Enabled || !cfg.EnableCustomSections || len(cfg.CustomSections) == 0 {
		return generated, nil
	}

	custom, err := e.loadCustomSections(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(custom) == 0 {
		return generated, nil
	}

	cloned := generated.Clone()
	out := &cloned
	switch cfg.InjectionStrategy {
	case config.StrategyPrepend:
		out.Sections = applyPrepend(out.Sections, custom)
	case config.StrategyAppend:
		out.Sections = applyAppend(out.Sections, custom)
	case config.StrategyReplace:
		out.Sections = applyReplace(out.Sections, custom)
	case config.StrategyMerge:
		out.Sections = applyMerge(out.Sections, custom)
	default:
		return nil, fmt.Errorf("unknown injection strategy %q", cfg.InjectionStrategy)
	}
	return out, nil
}

// loadCustomSections fetches content for each enabled spec. Missing
// content is skipped (logged) when fallback_to_generated is set,
// otherwise the whole injection fails.
func (e *Engine) loadCustomSections(ctx context.Context, cfg *config.RepositoryConfig) ([]sections.Section, error) {
	var out []sections.Section
	for _, spec := range cfg.CustomSections {
		if !spec.Enabled {
			continue
		}
		content, err := e.fetchContent(ctx, spec.Path)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) && cfg.FallbackToGenerated {
				log.Printf("injection: skipping custom section %q for %s: content %s not found", spec.Name, cfg.RepoURL, spec.Path)
				continue
			}
			return nil, &Error{Kind: KindMissingContent, Section: spec.Name, Err: err}
		}
		out = append(out, sections.Section{
			Name:        spec.Name,
			Content:     content,
			Description: spec.Description,
			Icon:        spec.Icon,
			Priority:    spec.Priority,
			IsCustom:    true,
			SourcePath:  spec.Path,
		})
	}
	return out, nil
}

func (e *Engine) fetchContent(ctx context.Context, key string) (string, error) {
	data, err := e.store.Read(ctx, key)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return string(data), nil
}

// applyPrepend places the custom block before the generated block. Each
// block is priority-sorted internally; the blocks are not re-mingled.
func applyPrepend(generated, custom []sections.Section) []sections.Section {
	sections.SortByPriority(custom)
	sections.SortByPriority(generated)
	return append(custom, generated...)
}

func applyAppend(generated, custom []sections.Section) []sections.Section {
	sections.SortByPriority(generated)
	sections.SortByPriority(custom)
	return append(generated, custom...)
}

// applyReplace drops every generated section whose name matches a custom
// one, then positions all sections by priority. Custom sections come
// first in the pre-sort list, so they win ties against generated ones.
func applyReplace(generated, custom []sections.Section) []sections.Section {
	replaced := map[string]bool{}
	for _, c := range custom {
		replaced[c.Name] = true
	}

	out := make([]sections.Section, 0, len(generated)+len(custom))
	out = append(out, custom...)
	for _, g := range generated {
		if !replaced[g.Name] {
			out = append(out, g)
		}
	}
	sections.SortByPriority(out)
	return out
}

// applyMerge overwrites matched generated sections in place and inserts
// unmatched custom sections by priority among the siblings.
func applyMerge(generated, custom []sections.Section) []sections.Section {
	byName := map[string]int{}
	for i, g := range generated {
		byName[g.Name] = i
	}

	out := make([]sections.Section, len(generated))
	copy(out, generated)
	var inserts []sections.Section
	for _, c := range custom {
		i, ok := byName[c.Name]
		if !ok {
			inserts = append(inserts, c)
			continue
		}
		// Priority and children stay with the generated section.
		out[i].Content = c.Content
		out[i].Description = c.Description
		out[i].Icon = c.Icon
		out[i].IsCustom = true
		out[i].SourcePath = c.SourcePath
	}
	out = append(out, inserts...)
	sections.SortByPriority(out)
	return out
}

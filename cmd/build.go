package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/progress"
	"github.com/adocshq/adocs/internal/sections"
)

var (
	buildAnalysisDir  string
	buildExemplarFile string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the knowledge base from analysis files",
	Long: `Reads repository analysis files (*_analysis.json) and an exemplar map
(repo URL to documentation structure), embeds each repository's corpus
text, and publishes a new knowledge base snapshot. The previous snapshot
is garbage-collected once the new one is verified loadable.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		a, err := buildApp(cfg, false)
		exitOnError(err)
		defer a.Close()

		raws, err := readAnalysisDir(buildAnalysisDir)
		exitOnError(err)
		if len(raws) == 0 {
			exitOnError(fmt.Errorf("no *_analysis.json files found in %s", buildAnalysisDir))
		}

		exemplars, err := readExemplarMap(buildExemplarFile)
		exitOnError(err)

		reporter := progress.NewReporter()
		reporter.Start(len(raws))
		a.rebuilder.Builder.SetProgress(func(done, total int, repoURL string) {
			reporter.Update(done, repoURL)
		})

		snap, err := a.rebuilder.Rebuild(context.Background(), raws, exemplars)
		reporter.Finish()
		exitOnError(err)

		fmt.Printf("Knowledge base %s built: %d records, %d dimensions (%s)\n",
			snap.Version, len(snap.Records), snap.Dimensions, snap.EmbedderName)
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildAnalysisDir, "analysis-dir", "analysis", "directory containing *_analysis.json files")
	buildCmd.Flags().StringVar(&buildExemplarFile, "exemplars", "exemplars.json", "JSON file mapping repo URLs to documentation structures")
	rootCmd.AddCommand(buildCmd)
}

// readAnalysisDir loads every *_analysis.json file as a RepoMetadata.
func readAnalysisDir(dir string) ([]metadata.RepoMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading analysis dir: %w", err)
	}

	var raws []metadata.RepoMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_analysis.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var meta metadata.RepoMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		raws = append(raws, meta)
	}
	return raws, nil
}

// readExemplarMap loads the exemplar structures keyed by repo URL. A
// missing file yields an empty map; records without exemplars are skipped
// at build time.
func readExemplarMap(path string) (map[string]sections.Structure, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading exemplar map: %w", err)
	}
	var out map[string]sections.Structure
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing exemplar map: %w", err)
	}
	return out, nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/site"
)

var (
	generateMetaFile string
	generateOutFile  string
	generateHTMLFile string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a documentation outline for one repository",
	Long: `Loads a repository analysis file, retrieves similar repositories from
the knowledge base, generates a documentation structure, and applies
any configured custom section injection.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		a, err := buildApp(cfg, true)
		exitOnError(err)
		defer a.Close()

		data, err := os.ReadFile(generateMetaFile)
		exitOnError(err)
		var meta metadata.RepoMetadata
		exitOnError(json.Unmarshal(data, &meta))

		ctx := context.Background()
		if _, err := a.rebuilder.Restore(ctx); err != nil {
			exitOnError(fmt.Errorf("loading knowledge base: %w", err))
		}

		result, err := a.service.GenerateDocumentation(ctx, &meta)
		exitOnError(err)

		out, err := json.MarshalIndent(result, "", "  ")
		exitOnError(err)

		if generateOutFile == "" {
			fmt.Println(string(out))
		} else {
			exitOnError(os.WriteFile(generateOutFile, out, 0o644))
			fmt.Printf("Documentation structure written to %s\n", generateOutFile)
		}

		if generateHTMLFile != "" {
			exitOnError(site.NewPreview().WriteFile(generateHTMLFile, meta.RepoURL, result.Structure))
			fmt.Printf("HTML preview written to %s\n", generateHTMLFile)
		}
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateMetaFile, "metadata", "", "repository analysis JSON file (required)")
	generateCmd.Flags().StringVarP(&generateOutFile, "out", "o", "", "write result JSON to file instead of stdout")
	generateCmd.Flags().StringVar(&generateHTMLFile, "html", "", "also write an HTML preview to this path")
	generateCmd.MarkFlagRequired("metadata")
	rootCmd.AddCommand(generateCmd)
}

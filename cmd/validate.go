package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adocshq/adocs/internal/config"
	"github.com/adocshq/adocs/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate [repo-url...]",
	Short: "Validate service and repository configuration",
	Long: `Validates .adocs.yml, and for each repository URL argument checks its
effective configuration from the repository overrides file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)
		fmt.Printf("%s: valid\n", cfgFile)

		if len(args) == 0 {
			return
		}

		store := config.NewRepoConfigStore(cfg.RepoConfigPath)
		failed := false
		for _, repoURL := range args {
			repoCfg, err := store.Get(repoURL)
			if err != nil {
				fmt.Printf("%s: error: %v\n", repoURL, err)
				failed = true
				continue
			}
			if repoCfg == nil {
				fmt.Printf("%s: no overrides configured\n", repoURL)
				continue
			}
			violations := pipeline.ValidateConfig(repoCfg)
			if len(violations) == 0 {
				fmt.Printf("%s: valid (%d custom sections, strategy %s)\n",
					repoURL, len(repoCfg.CustomSections), repoCfg.InjectionStrategy)
				continue
			}
			failed = true
			fmt.Printf("%s: invalid\n", repoURL)
			for _, v := range violations {
				fmt.Printf("  - %s\n", v)
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "adocs",
	Short: "RAG-based documentation outline generation",
	Long: `adocs generates documentation outlines for software repositories by
retrieving structurally similar repositories from a curated knowledge
base, prompting an LLM with their documentation structures as exemplars,
and merging operator-defined custom sections into the result.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// API keys may live in a .env next to the binary.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".adocs.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  citegraph config                                  # Show all config
  citegraph config papers_url                       # Get specific value
  citegraph config papers_url s3://bucket/papers.json.zst
  citegraph config recenter_on_click false

Keys:
  papers_url         Title index document
  edges_url          Citation edges document
  search_index_url   Search index document
  fallback_title     Label for papers without a title (default "Unknown")
  recenter_on_click  Clicking a neighbor node selects it (default true)
  popular_count      Size of the popular papers list (default 10)
  fetch_rate         HTTP requests per second when fetching documents
  listen_addr        Address for 'citegraph serve'`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	switch len(args) {
	case 0:
		if humanOutput {
			for _, key := range config.Keys {
				value, _ := cfg.Get(key)
				if value == "" {
					value = styleSubtle.Sprint("(not set)")
				}
				fmt.Printf("%-18s %s\n", key+":", value)
			}
			return nil
		}
		return outputJSON(cfg)

	case 1:
		value, err := cfg.Get(args[0])
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(map[string]string{args[0]: value})

	default:
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if err := cfg.Validate(); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if err := cfg.Save(root); err != nil {
			exitWithError(ExitError, "saving config: %v", err)
		}
		if humanOutput {
			fmt.Printf("Set %s = %s\n", key, value)
			return nil
		}
		return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
}

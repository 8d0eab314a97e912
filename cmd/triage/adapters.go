package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines"
)

var adaptersJSON bool

// adaptersCmd lists the scanner adapters
var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List supported scanner formats",
	Long: `List every scanner adapter, the filename keywords that select it and the
version of its severity table.

Artifacts whose name matches no keyword are inspected by content and fall
back to the generic adapter.

Examples:
  triage adapters
  triage adapters --json`,
	Args: cobra.NoArgs,
	RunE: runAdapters,
}

func init() {
	adaptersCmd.Flags().BoolVar(&adaptersJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(adaptersCmd)
}

func runAdapters(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(globalOverrides())
	if err != nil {
		return err
	}
	enabled := cfg.ToPortsConfig().Engine

	catalog := engines.NewDefaultRegistry().Catalog()
	out := cmd.OutOrStdout()

	if adaptersJSON {
		type entry struct {
			ID          string   `json:"id"`
			Name        string   `json:"name"`
			Category    string   `json:"category"`
			Keywords    []string `json:"keywords"`
			TableVer    string   `json:"severity_table_version"`
			Description string   `json:"description"`
			Enabled     bool     `json:"enabled"`
		}
		entries := make([]entry, 0, len(catalog))
		for _, info := range catalog {
			entries = append(entries, entry{
				ID:          string(info.ID),
				Name:        info.Name,
				Category:    info.Category.String(),
				Keywords:    info.Keywords,
				TableVer:    info.TableVer,
				Description: info.Description,
				Enabled:     enabled.IsAdapterEnabled(info.ID),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(out, bold("Scanner Adapters"))
	fmt.Fprintln(out, strings.Repeat("-", 40))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tKEYWORDS\tTABLE\tSTATUS")
	for _, info := range catalog {
		status := "enabled"
		if !enabled.IsAdapterEnabled(info.ID) {
			status = dim("disabled")
		}
		keywords := strings.Join(info.Keywords, ",")
		if keywords == "" {
			keywords = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.ID, info.Category, keywords, info.TableVer, status)
	}
	return tw.Flush()
}

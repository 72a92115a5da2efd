package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/observability"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/transport"
)

type providerRow struct {
	Name      string `json:"name"`
	Ranking   int    `json:"ranking"`
	Legacy    bool   `json:"legacy"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

func newProvidersCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List registered transports",
		Long: `List the registered transports, highest ranking first.

Legacy transports are ranked below every modern transport. Availability is
checked concurrently and reflects the current configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			registry, err := transport.NewDefaultRegistry(cfg.Transport)
			if err != nil {
				return err
			}

			results := registry.CheckAvailability(ctx)
			observability.RecordAvailabilityResults(ctx, rt.metrics, results)

			rows := make([]providerRow, 0, len(results))
			for _, r := range results {
				row := providerRow{
					Name:      r.Entry.Name,
					Ranking:   r.Entry.Ranking,
					Legacy:    r.Entry.Legacy,
					Available: r.Available,
				}
				if r.Err != nil {
					row.Error = r.Err.Error()
				}
				rows = append(rows, row)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			return writeProviderTable(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func writeProviderTable(w io.Writer, rows []providerRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRANKING\tLEGACY\tAVAILABLE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%t\t%t\n", r.Name, r.Ranking, r.Legacy, r.Available)
	}
	return tw.Flush()
}

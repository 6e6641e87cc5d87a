package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ragkit/output"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show document, chunk, and embedding counts for the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(".")
			if err != nil {
				return err
			}

			p, closeStore, err := buildPipeline(cfg, false)
			if err != nil {
				return err
			}
			defer closeStore()

			stats, err := p.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			out := output.New(cmd.OutOrStdout())
			out.Statusf("", "documents:  %d", stats.DocumentCount)
			out.Statusf("", "chunks:     %d", stats.ChunkCount)
			out.Statusf("", "dimensions: %d", stats.EmbeddingDimensions)
			out.Statusf("", "store:      %s", stats.StoreName)
			out.Statusf("", "embedder:   %s", stats.EmbedderName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

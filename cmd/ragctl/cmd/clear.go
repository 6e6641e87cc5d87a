package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ragkit/output"
)

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every chunk from the configured store",
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

			if err := p.Clear(cmd.Context()); err != nil {
				return err
			}

			output.New(cmd.OutOrStdout()).Success("store cleared")
			return nil
		},
	}
}

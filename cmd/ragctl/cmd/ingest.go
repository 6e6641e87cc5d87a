package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ragkit/pipeline"
	"github.com/Aman-CERP/ragkit/ui"
)

func newIngestCmd() *cobra.Command {
	var recursive bool
	var forcePlain bool

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Chunk, embed, and store a file or directory of documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], recursive, forcePlain)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subdirectories")
	cmd.Flags().BoolVar(&forcePlain, "no-tui", false, "disable the interactive progress UI")
	return cmd
}

func runIngest(cmd *cobra.Command, path string, recursive, forcePlain bool) error {
	cfg, err := loadConfig(filepath.Dir(path))
	if err != nil {
		return err
	}

	p, closeStore, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	defer closeStore()

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(), ui.WithForcePlain(forcePlain)))
	ctx := cmd.Context()
	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("start progress renderer: %w", err)
	}
	defer renderer.Stop()

	errCount := 0
	p.SetIngestionHandler(func(evt pipeline.IngestionProgress) {
		renderer.UpdateProgress(evt)
		if evt.Phase == pipeline.PhaseFailed {
			errCount++
			renderer.AddError(ui.ErrorEvent{DocumentID: evt.DocumentID, Err: fmt.Errorf("%s", evt.Message)})
		}
	})

	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var chunks int
	if info.IsDir() {
		chunks, err = p.IngestDirectory(ctx, path, recursive)
	} else {
		chunks, err = p.IngestURL(ctx, path)
	}
	if err != nil {
		return err
	}

	stats, statErr := p.Statistics(ctx)
	if statErr != nil {
		return statErr
	}

	renderer.Complete(ui.CompletionStats{
		Documents: stats.DocumentCount,
		Chunks:    chunks,
		Duration:  time.Since(start).Round(time.Millisecond).String(),
		Errors:    errCount,
	})
	return nil
}

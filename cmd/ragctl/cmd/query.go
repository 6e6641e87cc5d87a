package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ragkit/filter"
	"github.com/Aman-CERP/ragkit/output"
	"github.com/Aman-CERP/ragkit/pipeline"
)

func newQueryCmd() *cobra.Command {
	var limit int
	var jsonOutput bool
	var stream bool
	var noLLM bool

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Retrieve context for a question, generating an answer if an LLM is configured",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], limit, jsonOutput, stream, !noLLM)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "number of chunks to retrieve")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream the generated answer as it's produced")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "retrieve only, skip answer generation")
	return cmd
}

func runQuery(cmd *cobra.Command, question string, limit int, jsonOutput, stream, withLLM bool) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	p, closeStore, err := buildPipeline(cfg, withLLM)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	out := output.New(cmd.OutOrStdout())

	if stream && withLLM {
		return streamQuery(cmd, p, question, limit, out)
	}

	resp, err := p.Query(ctx, question, limit, filter.Filter{})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Answer != "" {
		out.Success(resp.Answer)
		out.Newline()
	}
	for i, r := range resp.Sources {
		out.Statusf("", "[%d] (score %.3f) %s", i+1, r.Score, truncate(r.Chunk.Content, 200))
	}
	return nil
}

func streamQuery(cmd *cobra.Command, p *pipeline.Pipeline, question string, limit int, out *output.Writer) error {
	for evt := range p.StreamQuery(cmd.Context(), question, limit, filter.Filter{}) {
		switch evt.Kind {
		case pipeline.EventGenerationChunk:
			fmt.Fprint(cmd.OutOrStdout(), evt.Text)
		case pipeline.EventGenerationDone:
			fmt.Fprintln(cmd.OutOrStdout())
		case pipeline.EventError:
			return evt.Err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

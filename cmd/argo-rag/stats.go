package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/summarizer"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the record table and the vector collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			records, err := openRecordStore(a.cfg)
			if err != nil {
				return err
			}
			defer records.Close()
			ov, err := records.Overview(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Records: %s\n", summarizer.RenderOverview(ov))

			vectors, err := openVectorStore(a.cfg)
			if err != nil {
				fmt.Fprintf(out, "Vectors: unavailable (%v)\n", err)
				return nil
			}
			defer vectors.Close()
			info, err := vectors.Describe(ctx)
			if err != nil {
				fmt.Fprintf(out, "Vectors: unavailable (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "Vectors: %d documents in %q, dimension %d, embedder %s\n", info.Count, info.Name, info.Dimension, info.Embedder)
			if info.Count != ov.Rows {
				fmt.Fprintln(out, "The collection is out of date; run `argo-rag index`.")
			}
			return nil
		},
	}
}

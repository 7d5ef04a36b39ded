package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/service"
)

func newIndexCmd(a *app) *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector collection from the record table",
		Long: `Drops the vector collection, recreates it and embeds one summary per
stored observation, batch by batch. A failed rebuild leaves a partial
collection; run the command again to start over.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if batchSize == 0 {
				batchSize = a.cfg.Index.BatchSize
			}

			release, err := service.AcquireRebuildLock(a.cfg.Index.LockFile, secs(a.cfg.Index.LockTimeoutSecs))
			if err != nil {
				return err
			}
			defer release()

			records, err := openRecordStore(a.cfg)
			if err != nil {
				return err
			}
			defer records.Close()
			vectors, err := openVectorStore(a.cfg)
			if err != nil {
				return err
			}
			defer vectors.Close()
			emb, err := newEmbedder(a.cfg)
			if err != nil {
				return err
			}

			report, err := service.NewIndexer(records, vectors, emb).Rebuild(ctx, batchSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents in %d batches into %q (%s)\n",
				report.Documents, report.Batches, a.cfg.VectorStore.Collection, report.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "records per embedding batch (default from config)")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/dataset"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/service"
)

func newIngestCmd(a *app) *cobra.Command {
	var truncate bool
	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Flatten a profile file into the record table",
		Long: `Reads one float's profile file, drops every level missing pressure,
temperature or salinity, and appends the remaining observations to the record
table. Rows are never deduplicated: pass --truncate when re-ingesting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := dataset.FileReader{Path: args[0], FillValue: a.cfg.Dataset.FillValue}.Read(ctx)
			if err != nil {
				return err
			}
			store, err := openRecordStore(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := service.NewIngestor(store).Ingest(ctx, ds, truncate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d observations for float %s into %s\n", n, ds.FloatID(), a.cfg.RecordStore.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&truncate, "truncate", false, "empty the record table before inserting")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/service"
)

// openComposer wires the retriever and generator. The retriever checks the
// collection up front, so a missing or mismatched index fails here rather
// than on every question.
func openComposer(ctx context.Context, a *app, k int) (*service.Composer, domain.VectorStore, error) {
	vectors, err := openVectorStore(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	emb, err := newEmbedder(a.cfg)
	if err != nil {
		vectors.Close()
		return nil, nil, err
	}
	retriever, err := service.NewRetriever(ctx, emb, vectors, a.cfg.Retrieval.TopK)
	if err != nil {
		vectors.Close()
		return nil, nil, err
	}
	gen, err := newGenerator(a.cfg)
	if err != nil {
		vectors.Close()
		return nil, nil, err
	}
	return service.NewComposer(retriever, gen, k), vectors, nil
}

func newAskCmd(a *app) *cobra.Command {
	var (
		k       int
		sources bool
	)
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer one question from the indexed profiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			composer, vectors, err := openComposer(ctx, a, k)
			if err != nil {
				return err
			}
			defer vectors.Close()

			qc := composer.Ask(ctx, strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, qc.Answer)
			if sources {
				printSources(out, qc.Results)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "top-k", "k", 0, "number of documents to retrieve (default from config)")
	cmd.Flags().BoolVar(&sources, "sources", false, "list the retrieved documents after the answer")
	return cmd
}

func printSources(w io.Writer, results []domain.SearchResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSources:\n")
	for i, r := range results {
		fmt.Fprintf(w, "%2d. [%.3f] %s\n    %s\n", i+1, r.Distance, r.Document.ID, r.Document.Text)
	}
}

package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/summarizer"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive question screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			composer, vectors, err := openComposer(ctx, a, 0)
			if err != nil {
				return err
			}
			defer vectors.Close()

			overview := ""
			if records, err := openRecordStore(a.cfg); err != nil {
				logger.Warn("record table unavailable, starting without overview: %v", err)
			} else {
				if ov, err := records.Overview(ctx); err == nil {
					overview = summarizer.RenderOverview(ov)
				}
				records.Close()
			}

			_, err = tea.NewProgram(tui.New(ctx, composer, overview), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

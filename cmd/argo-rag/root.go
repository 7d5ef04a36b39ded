package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/config"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	cfgPath string
	verbose bool
	cfg     *config.AppConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "argo-rag",
		Short:        "Ask questions about Argo float profiles",
		SilenceUsage: true,
		Long: `argo-rag loads Argo float profile files into a local table, indexes one
text summary per observation in a vector store, and answers questions from
the nearest summaries with a language model.

Typical use:
  argo-rag ingest profiles.json --truncate
  argo-rag index
  argo-rag ask "What was the temperature for float 5906142?"`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/argo-rag/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "print pipeline progress")

	root.AddCommand(
		newIngestCmd(a),
		newIndexCmd(a),
		newAskCmd(a),
		newChatCmd(a),
		newStatsCmd(a),
	)
	return root
}

func (a *app) load() error {
	// A missing .env is fine; keys may come from the environment.
	_ = godotenv.Load()
	logger.SetVerbose(a.verbose)

	var (
		cfg  *config.AppConfig
		path = a.cfgPath
		err  error
	)
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return err
	}
	logger.Debug("using config %s", path)
	a.cfg = cfg
	return nil
}

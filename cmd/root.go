package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/getsavvyinc/nbcomplete/config"
	"github.com/getsavvyinc/nbcomplete/explainlog"
	"github.com/getsavvyinc/nbcomplete/slice"
	"github.com/spf13/cobra"
)

const defaultNotebook = "jupyter.ipynb"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nbcomplete [notebook.ipynb]",
	Short: "Complete marked code cells in a Jupyter notebook",
	Example: `
  nbcomplete                      # completes ./jupyter.ipynb
  nbcomplete notebooks/lab1.ipynb
  nbcomplete lab1.ipynb --log-mode truncate --show
  `,
	Long: `
  nbcomplete finds every code cell containing a "# start code here" comment,
  sends the markdown and code written before it to a chat completion model and
  replaces the cell with the model's code.

  The result is saved as updated_<notebook> next to the original, which is left
  untouched. An explanation of every completed cell is written to
  code_explanations.txt.

  The API key is read from OPENAI_API_KEY, from a .env file in the working
  directory or from ~/.config/nbcomplete/config.json.
  `,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logLevel := slog.LevelInfo
		if debugFlag {
			logLevel = slog.LevelDebug
		}
		textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     logLevel,
		})
		logger := slog.New(textHandler)
		slog.SetDefault(logger)
		cmd.SetContext(ctxWithLogger(cmd.Context(), logger))
	},
	Run: runComplete,
}

var (
	debugFlag   bool
	showFlag    bool
	modelFlag   string
	logFileFlag string
	logModeFlag string
	retriesFlag uint64
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug mode")

	modes := strings.Join(slice.Map(explainlog.Modes, func(m explainlog.Mode) string { return string(m) }), "|")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", config.DefaultModelName, "Chat model used for completions and explanations")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", config.DefaultLogFile, "File explanations are written to")
	rootCmd.Flags().StringVar(&logModeFlag, "log-mode", config.DefaultLogMode, "What to do with explanations from earlier runs: "+modes)
	rootCmd.Flags().Uint64Var(&retriesFlag, "retries", 0, "Retries for rate limited or failed API requests")
	rootCmd.Flags().BoolVar(&showFlag, "show", false, "Print every completion and its explanation")
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelName = modelFlag
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFileFlag
	}
	if flags.Changed("log-mode") {
		cfg.LogMode = logModeFlag
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = retriesFlag
	}
}

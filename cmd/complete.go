package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsavvyinc/nbcomplete/completer"
	"github.com/getsavvyinc/nbcomplete/config"
	"github.com/getsavvyinc/nbcomplete/display"
	"github.com/getsavvyinc/nbcomplete/explainlog"
	"github.com/getsavvyinc/nbcomplete/llm/service"
	"github.com/spf13/cobra"
)

const noMarkersMsg = `No cells marked with "# start code here" were found`

type completion struct {
	index       int
	code        string
	explanation string
}

// report is what a finished run shows the user.
type report struct {
	result      *completer.Result
	logPath     string
	completions []completion
}

func runComplete(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	logger := loggerFromCtx(ctx).With("command", "complete")

	path := notebookPath(args)

	cfg, err := config.Load()
	if err != nil {
		display.FatalErr(err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		display.FatalErr(err)
	}

	svc := service.New(cfg, service.WithLogger(logger))

	var rep *report
	run := func(ctx context.Context) error {
		var rerr error
		rep, rerr = complete(ctx, svc, cfg, path, logger)
		return rerr
	}

	// debug logs share stdout with the spinner
	if debugFlag {
		err = run(ctx)
	} else {
		err = display.Spin(ctx, fmt.Sprintf("Completing %s with %s...", path, cfg.ModelName), run)
	}
	if err != nil {
		logger.Debug("completion failed", "error", err)
		display.FatalErr(err)
	}

	if showFlag {
		for _, cp := range rep.completions {
			display.Heading(fmt.Sprintf("Code Snippet %d", cp.index))
			display.Markdown(fmt.Sprintf("```python\n%s\n```\n\n%s", cp.code, cp.explanation))
		}
	}

	saved, info := rep.summary()
	display.Success(saved)
	display.Info(info)
}

func notebookPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultNotebook
}

// complete runs the pipeline for the notebook at path and collects every
// completion for display.
func complete(ctx context.Context, svc service.Service, cfg *config.Config, path string, logger *slog.Logger) (*report, error) {
	explanations, err := explainlog.New(cfg.LogFile, explainlog.Mode(cfg.LogMode))
	if err != nil {
		return nil, err
	}

	rep := &report{logPath: explanations.Path()}
	c := completer.New(
		svc,
		explanations,
		completer.WithLogger(logger),
		completer.WithObserver(func(index int, code, explanation string) {
			rep.completions = append(rep.completions, completion{index: index, code: code, explanation: explanation})
		}),
	)

	res, err := c.Process(ctx, path)
	if err != nil {
		return nil, err
	}
	rep.result = res
	return rep, nil
}

func (r *report) summary() (saved, info string) {
	saved = fmt.Sprintf("Notebook saved as %s", r.result.Path)
	if r.result.Completed == 0 {
		return saved, noMarkersMsg
	}
	return saved, fmt.Sprintf("Completed %d cells. Explanations written to %s", r.result.Completed, r.logPath)
}

package display

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"
)

// ErrInterrupted is returned by Spin when the spinner is closed (Ctrl-C)
// before the action finished.
var ErrInterrupted = fmt.Errorf("interrupted: %w", context.Canceled)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runSpinnerFunc shows a spinner titled title until wait returns or the
// user quits it.
type runSpinnerFunc func(title string, wait func()) error

func runSpinner(title string, wait func()) error {
	return spinner.New().Title(title).Action(wait).Run()
}

// Spin runs action while showing a spinner titled title. Without a terminal
// the action runs without one.
//
// The spinner reads Ctrl-C as a key press, so SIGINT never reaches the
// process. When the spinner exits first, the action's context is cancelled,
// Spin waits for the action to return and reports ErrInterrupted.
func Spin(ctx context.Context, title string, action func(context.Context) error) error {
	if !IsTerminal() {
		return action(ctx)
	}
	return spin(ctx, title, action, runSpinner)
}

func spin(ctx context.Context, title string, action func(context.Context) error, run runSpinnerFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = action(ctx)
	}()

	serr := run(title, func() { <-done })

	select {
	case <-done:
	default:
		cancel()
		<-done
		return ErrInterrupted
	}

	if serr != nil {
		return serr
	}
	return err
}

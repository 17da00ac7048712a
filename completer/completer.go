// Package completer runs the notebook completion pipeline: it loads a
// notebook, asks the model to finish every marked code cell, logs an
// explanation of each completion and saves the result next to the original.
package completer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsavvyinc/nbcomplete/cells"
	"github.com/getsavvyinc/nbcomplete/explainlog"
	"github.com/getsavvyinc/nbcomplete/llm/service"
	"github.com/getsavvyinc/nbcomplete/notebook"
	"github.com/getsavvyinc/nbcomplete/prompt"
)

// Observer is called after each completed cell has been logged.
type Observer func(index int, code, explanation string)

type Option func(*Completer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Completer) { c.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(c *Completer) { c.observer = o }
}

type Completer struct {
	svc      service.Service
	log      *explainlog.Log
	logger   *slog.Logger
	observer Observer
}

func New(svc service.Service, log *explainlog.Log, opts ...Option) *Completer {
	c := &Completer{
		svc:    svc,
		log:    log,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result describes a finished run.
type Result struct {
	// Path is where the completed notebook was written.
	Path string
	// Completed is the number of cells replaced by a completion.
	Completed int
}

// Process completes the notebook at path and writes it to
// notebook.UpdatedPath(path). The file at path is never modified.
func (c *Completer) Process(ctx context.Context, path string) (*Result, error) {
	logger := c.logger.With("notebook", path)

	nb, err := notebook.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notebook: %w", err)
	}

	pairs := cells.Extract(nb)
	entries := cells.Filter(pairs)
	logger.Debug("grouped cells", "cells", len(nb.Cells), "code_cells", len(pairs), "marked_cells", len(entries))

	if err := c.log.Begin(); err != nil {
		return nil, err
	}
	if err := c.Update(ctx, entries); err != nil {
		return nil, err
	}

	out := notebook.UpdatedPath(path)
	if err := nb.WriteFile(out); err != nil {
		return nil, fmt.Errorf("failed to save notebook: %w", err)
	}
	logger.Debug("saved notebook", "path", out)
	return &Result{Path: out, Completed: len(entries)}, nil
}

// Update completes entries in order, replacing each target cell's source
// with the model's completion. Log indices follow the order of entries.
// It stops before the next cell once ctx is cancelled.
func (c *Completer) Update(ctx context.Context, entries []cells.Entry) error {
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger := c.logger.With("index", i)

		completionPrompt := prompt.Completion(entry.Instructions, entry.Cell.Source)
		code, err := c.svc.CompleteCode(ctx, completionPrompt)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}
		logger.Debug("completed cell", "bytes", len(code))

		explanation, err := c.svc.Explain(ctx, code)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}

		if err := c.log.Append(i, code, explanation); err != nil {
			return err
		}
		entry.Cell.Source = code

		if c.observer != nil {
			c.observer(i, code, explanation)
		}
	}
	return nil
}

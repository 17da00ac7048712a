package completer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/getsavvyinc/nbcomplete/cells"
	"github.com/getsavvyinc/nbcomplete/completer"
	"github.com/getsavvyinc/nbcomplete/explainlog"
	"github.com/getsavvyinc/nbcomplete/notebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService answers every prompt with numbered canned text and records
// what it was asked.
type fakeService struct {
	prompts  []string
	explains []string
	err      error
}

func (f *fakeService) CompleteCode(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.prompts = append(f.prompts, prompt)
	return fmt.Sprintf("completion %d", len(f.prompts)), nil
}

func (f *fakeService) Explain(_ context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.explains = append(f.explains, code)
	return "explains " + code, nil
}

func md(s string) *notebook.Cell   { return notebook.NewCell(notebook.CellTypeMarkdown, s) }
func code(s string) *notebook.Cell { return notebook.NewCell(notebook.CellTypeCode, s) }

func writeNotebook(t *testing.T, path string, cs ...*notebook.Cell) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, notebook.New(cs...).WriteFile(path))
}

func newCompleter(t *testing.T, svc *fakeService, logPath string, mode explainlog.Mode, opts ...completer.Option) *completer.Completer {
	t.Helper()
	l, err := explainlog.New(logPath, mode)
	require.NoError(t, err)
	return completer.New(svc, l, opts...)
}

func TestProcess(t *testing.T) {
	t.Run("SingleMarkerCell", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "notebooks", "a.ipynb")
		writeNotebook(t, input, md("# Title"), code("# start code here\npass"))
		original, err := os.ReadFile(input)
		require.NoError(t, err)

		svc := &fakeService{}
		logPath := filepath.Join(dir, "code_explanations.txt")
		res, err := newCompleter(t, svc, logPath, explainlog.Append).Process(context.Background(), input)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "notebooks", "updated_a.ipynb"), res.Path)
		assert.Equal(t, 1, res.Completed)

		require.Len(t, svc.prompts, 1)
		assert.Contains(t, svc.prompts[0], "Markdown Instructions:\n# Title\n\nCurrent Code Cell:\n# start code here\npass")
		assert.NotContains(t, svc.prompts[0], "Previous Code:")
		assert.Equal(t, []string{"completion 1"}, svc.explains)

		updated, err := notebook.ReadFile(res.Path)
		require.NoError(t, err)
		require.Len(t, updated.Cells, 2)
		assert.Equal(t, "# Title", updated.Cells[0].Source)
		assert.Equal(t, "completion 1", updated.Cells[1].Source)

		unchanged, err := os.ReadFile(input)
		require.NoError(t, err)
		assert.Equal(t, original, unchanged)

		logData, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, explainlog.Record(0, "completion 1", "explains completion 1"), string(logData))
	})
	t.Run("AccumulatedContext", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "b.ipynb")
		writeNotebook(t, input, code("x=1"), md("do more"), code("# START CODE HERE"))

		svc := &fakeService{}
		res, err := newCompleter(t, svc, filepath.Join(dir, "log.txt"), explainlog.Append).Process(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Completed)

		require.Len(t, svc.prompts, 1)
		assert.Contains(t, svc.prompts[0], "Previous Code:\nx=1")
		assert.Contains(t, svc.prompts[0], "Markdown Instructions:\ndo more")

		updated, err := notebook.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, "x=1", updated.Cells[0].Source)
		assert.Equal(t, "completion 1", updated.Cells[2].Source)
	})
	t.Run("NoMarkerCells", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "c.ipynb")
		writeNotebook(t, input, md("intro"), code("x = 1"), md("outro"))

		svc := &fakeService{}
		logPath := filepath.Join(dir, "log.txt")
		res, err := newCompleter(t, svc, logPath, explainlog.Append).Process(context.Background(), input)
		require.NoError(t, err)
		assert.Zero(t, res.Completed)
		assert.Empty(t, svc.prompts)

		before, err := notebook.ReadFile(input)
		require.NoError(t, err)
		after, err := notebook.ReadFile(res.Path)
		require.NoError(t, err)
		require.Len(t, after.Cells, len(before.Cells))
		for i := range before.Cells {
			assert.Equal(t, before.Cells[i].Type, after.Cells[i].Type)
			assert.Equal(t, before.Cells[i].Source, after.Cells[i].Source)
		}

		_, err = os.Stat(logPath)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("MissingNotebook", func(t *testing.T) {
		dir := t.TempDir()
		_, err := newCompleter(t, &fakeService{}, filepath.Join(dir, "log.txt"), explainlog.Append).Process(context.Background(), filepath.Join(dir, "missing.ipynb"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("ServiceFailureWritesNothing", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "d.ipynb")
		writeNotebook(t, input, code("# start code here"))

		errAPI := errors.New("rate limited")
		_, err := newCompleter(t, &fakeService{err: errAPI}, filepath.Join(dir, "log.txt"), explainlog.Append).Process(context.Background(), input)
		require.Error(t, err)
		assert.ErrorIs(t, err, errAPI)

		_, err = os.Stat(notebook.UpdatedPath(input))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestProcessLogModes(t *testing.T) {
	setup := func(t *testing.T) (dir, first, second, logPath string) {
		dir = t.TempDir()
		first = filepath.Join(dir, "first.ipynb")
		second = filepath.Join(dir, "second.ipynb")
		writeNotebook(t, first, md("one"), code("# start code here"), md("two"), code("# start code here"))
		writeNotebook(t, second, md("three"), code("# start code here"))
		return dir, first, second, filepath.Join(dir, "code_explanations.txt")
	}

	t.Run("AppendKeepsEveryRun", func(t *testing.T) {
		_, first, second, logPath := setup(t)
		svc := &fakeService{}
		c := newCompleter(t, svc, logPath, explainlog.Append)

		_, err := c.Process(context.Background(), first)
		require.NoError(t, err)
		_, err = c.Process(context.Background(), second)
		require.NoError(t, err)

		got, err := os.ReadFile(logPath)
		require.NoError(t, err)
		expected := explainlog.Record(0, "completion 1", "explains completion 1") +
			explainlog.Record(1, "completion 2", "explains completion 2") +
			explainlog.Record(0, "completion 3", "explains completion 3")
		assert.Equal(t, expected, string(got))
	})
	t.Run("TruncateKeepsLastRun", func(t *testing.T) {
		_, first, second, logPath := setup(t)
		svc := &fakeService{}
		c := newCompleter(t, svc, logPath, explainlog.Truncate)

		_, err := c.Process(context.Background(), first)
		require.NoError(t, err)
		_, err = c.Process(context.Background(), second)
		require.NoError(t, err)

		got, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, explainlog.Record(0, "completion 3", "explains completion 3"), string(got))
	})
}

func TestUpdate(t *testing.T) {
	nb := notebook.New(
		md("a"), code("# start code here\n# first"),
		md("b"), code("# start code here\n# second"),
	)
	entries := cells.Filter(cells.Extract(nb))
	require.Len(t, entries, 2)

	svc := &fakeService{}
	var observed []int
	c := newCompleter(t, svc, filepath.Join(t.TempDir(), "log.txt"), explainlog.Append,
		completer.WithObserver(func(index int, code, explanation string) {
			observed = append(observed, index)
			assert.Equal(t, "explains "+code, explanation)
		}))

	require.NoError(t, c.Update(context.Background(), entries))

	assert.Equal(t, []int{0, 1}, observed)
	require.Len(t, svc.prompts, 2)
	assert.Contains(t, svc.prompts[0], "# first")
	assert.Contains(t, svc.prompts[1], "# second")
	assert.Equal(t, "completion 1", nb.Cells[1].Source)
	assert.Equal(t, "completion 2", nb.Cells[3].Source)
	assert.Equal(t, "a", nb.Cells[0].Source)
}

func TestUpdateCancelled(t *testing.T) {
	nb := notebook.New(md("a"), code("# start code here"))
	entries := cells.Filter(cells.Extract(nb))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &fakeService{}
	logPath := filepath.Join(t.TempDir(), "log.txt")
	err := newCompleter(t, svc, logPath, explainlog.Append).Update(ctx, entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, svc.prompts)
	assert.Equal(t, "# start code here", nb.Cells[1].Source)

	_, err = os.Stat(logPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

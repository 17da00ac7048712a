package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UpdatedPrefix is prepended to the file name of a completed notebook.
const UpdatedPrefix = "updated_"

// CellType is the value of a cell's cell_type field.
type CellType string

// Cell types defined by nbformat v4. Only markdown and code cells take part
// in completion; raw cells are kept as they are.
const (
	CellTypeMarkdown CellType = "markdown"
	CellTypeCode     CellType = "code"
	CellTypeRaw      CellType = "raw"
)

var (
	// ErrMissingCells is returned by Decode when the document has no cells array.
	ErrMissingCells = errors.New("notebook has no cells field")
	// ErrMissingCellType is returned by Decode when a cell has no cell_type.
	ErrMissingCellType = errors.New("cell has no cell_type field")
)

// Cell is a single notebook cell. Fields other than cell_type and source
// (metadata, outputs, execution_count, ...) are carried through untouched.
type Cell struct {
	Type   CellType
	Source string

	extra map[string]json.RawMessage
}

func (c *Cell) IsMarkdown() bool { return c.Type == CellTypeMarkdown }
func (c *Cell) IsCode() bool     { return c.Type == CellTypeCode }

// Notebook is an nbformat v4 document. Cells are addressed by their index.
type Notebook struct {
	Cells []*Cell

	extra map[string]json.RawMessage
}

// NewCell returns a cell with no extra fields. Code cells get the empty
// outputs and execution_count fields Jupyter expects.
func NewCell(t CellType, source string) *Cell {
	c := &Cell{Type: t, Source: source, extra: map[string]json.RawMessage{
		"metadata": json.RawMessage(`{}`),
	}}
	if t == CellTypeCode {
		c.extra["outputs"] = json.RawMessage(`[]`)
		c.extra["execution_count"] = json.RawMessage(`null`)
	}
	return c
}

// New returns an empty nbformat 4 notebook holding cells.
func New(cells ...*Cell) *Notebook {
	return &Notebook{
		Cells: cells,
		extra: map[string]json.RawMessage{
			"metadata":       json.RawMessage(`{}`),
			"nbformat":       json.RawMessage(`4`),
			"nbformat_minor": json.RawMessage(`5`),
		},
	}
}

// Decode parses a notebook document.
func Decode(data []byte) (*Notebook, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to parse notebook: %w", err)
	}

	rawCells, ok := top["cells"]
	if !ok {
		return nil, ErrMissingCells
	}
	delete(top, "cells")

	var cellDocs []map[string]json.RawMessage
	if err := json.Unmarshal(rawCells, &cellDocs); err != nil {
		return nil, fmt.Errorf("failed to parse cells: %w", err)
	}

	nb := &Notebook{extra: top}
	for i, doc := range cellDocs {
		cell, err := decodeCell(doc)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		nb.Cells = append(nb.Cells, cell)
	}
	return nb, nil
}

func decodeCell(doc map[string]json.RawMessage) (*Cell, error) {
	rawType, ok := doc["cell_type"]
	if !ok {
		return nil, ErrMissingCellType
	}
	var cellType string
	if err := json.Unmarshal(rawType, &cellType); err != nil {
		return nil, fmt.Errorf("invalid cell_type: %w", err)
	}

	source, err := decodeSource(doc["source"])
	if err != nil {
		return nil, err
	}

	delete(doc, "cell_type")
	delete(doc, "source")
	return &Cell{Type: CellType(cellType), Source: source, extra: doc}, nil
}

// decodeSource accepts both forms nbformat allows: a single string or a
// list of lines.
func decodeSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("invalid source: %w", err)
	}
	return strings.Join(lines, ""), nil
}

// Encode renders the notebook the way Jupyter writes it: sorted keys, one
// space of indentation and sources split into lines.
func (nb *Notebook) Encode() ([]byte, error) {
	cells := make([]map[string]any, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		doc := make(map[string]any, len(c.extra)+2)
		for k, v := range c.extra {
			doc[k] = v
		}
		doc["cell_type"] = c.Type
		doc["source"] = splitLines(c.Source)
		cells = append(cells, doc)
	}

	top := make(map[string]any, len(nb.extra)+1)
	for k, v := range nb.extra {
		top[k] = v
	}
	top["cells"] = cells

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(top); err != nil {
		return nil, fmt.Errorf("failed to encode notebook: %w", err)
	}
	return buf.Bytes(), nil
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ReadFile loads the notebook stored at path.
func ReadFile(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nb, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nb, nil
}

// WriteFile saves the notebook to path, replacing any existing file.
func (nb *Notebook) WriteFile(path string) error {
	data, err := nb.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UpdatedPath returns the path a completed copy of the notebook at path is
// written to: same directory, file name prefixed with UpdatedPrefix.
func UpdatedPath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, UpdatedPrefix+name)
}

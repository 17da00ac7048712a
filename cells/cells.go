// Package cells groups notebook cells into the context sent along with each
// code completion request.
//
// Extract pairs every code cell with the markdown written since the previous
// code cell. Filter then walks those pairs and keeps only the cells marked
// with a "# start code here" comment, folding everything in between into the
// instructions for the next marked cell.
package cells

import (
	"regexp"
	"strings"

	"github.com/getsavvyinc/nbcomplete/notebook"
)

const (
	markdownLabel = "Markdown Instructions:\n"
	codeLabel     = "Previous Code:\n"
	blockSep      = "\n\n"
)

var (
	inlineImagePattern = regexp.MustCompile(`!\[.*?\]\(data:image/(?:png|jpg|jpeg|gif);base64,[^\)]+\)`)
	markerPattern      = regexp.MustCompile(`(?i)#.*start\s*code\s*here`)
)

// Pair is a code cell together with the markdown cells that precede it.
type Pair struct {
	Markdown []string
	Cell     *notebook.Cell
}

// Entry is a code cell to complete and the instructions gathered for it.
type Entry struct {
	Instructions string
	Cell         *notebook.Cell
}

// StripImages removes inline base64 image links from markdown text.
func StripImages(markdown string) string {
	return inlineImagePattern.ReplaceAllString(markdown, "")
}

// IsMarker reports whether source carries a "start code here" comment.
func IsMarker(source string) bool {
	return markerPattern.MatchString(source)
}

// Extract pairs each code cell with the markdown since the previous code
// cell. Markdown after the last code cell is dropped.
func Extract(nb *notebook.Notebook) []Pair {
	var pairs []Pair
	var markdown []string
	for _, cell := range nb.Cells {
		switch {
		case cell.IsMarkdown():
			markdown = append(markdown, StripImages(cell.Source))
		case cell.IsCode():
			pairs = append(pairs, Pair{Markdown: markdown, Cell: cell})
			markdown = nil
		}
	}
	return pairs
}

// Filter returns an Entry for every marker cell in pairs. Unmarked pairs
// contribute their markdown and code to the instructions of the next marker.
func Filter(pairs []Pair) []Entry {
	var entries []Entry
	var blocks []string
	for _, p := range pairs {
		markdown := markdownLabel + strings.Join(p.Markdown, "\n")
		if !IsMarker(p.Cell.Source) {
			blocks = append(blocks, markdown, codeLabel+p.Cell.Source)
			continue
		}
		blocks = append(blocks, markdown)
		entries = append(entries, Entry{
			Instructions: strings.Join(blocks, blockSep),
			Cell:         p.Cell,
		})
		blocks = nil
	}
	return entries
}

package display

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

const wordWrap = 100

// Markdown renders text as styled markdown. If rendering fails the raw text
// is printed instead.
func Markdown(text string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		fmt.Println(text)
		return
	}
	out, err := r.Render(text)
	if err != nil {
		fmt.Println(text)
		return
	}
	fmt.Print(out)
}

package display

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var infoStyle = lipgloss.NewStyle().
	PaddingTop(1).
	PaddingBottom(1).
	Foreground(lipgloss.AdaptiveColor{
		Light: "21",
		Dark:  "33",
	})

var successStyle = lipgloss.NewStyle().
	Bold(true).
	PaddingTop(1).
	Foreground(lipgloss.Color("2"))

var headingStyle = lipgloss.NewStyle().
	Bold(true).
	Underline(true)

func Info(text string) {
	fmt.Println(infoStyle.Render(text))
}

func Success(text string) {
	fmt.Println(successStyle.Render(text))
}

// Heading prints a bold underlined title, used above rendered explanations.
func Heading(text string) {
	fmt.Println(headingStyle.Render(text))
}

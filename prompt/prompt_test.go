package prompt_test

import (
	"strings"
	"testing"

	"github.com/getsavvyinc/nbcomplete/prompt"
	"github.com/stretchr/testify/assert"
)

func TestCompletion(t *testing.T) {
	got := prompt.Completion("Markdown Instructions:\n# Title", "# start code here\npass")

	expectedPrefix := "Below are the instructions and previous code:\n\n" +
		"Markdown Instructions:\n# Title\n\n" +
		"Current Code Cell:\n# start code here\npass\n\n"
	assert.True(t, strings.HasPrefix(got, expectedPrefix), got)
	assert.Contains(t, got, "Only return the code itself")
	assert.Contains(t, got, "markdown code fences")
}

func TestCompletionKeepsTemplateSyntax(t *testing.T) {
	// text/template must not interpret braces coming from the notebook.
	got := prompt.Completion("use {{.Foo}} here", "d = {'a': {{1}}}")
	assert.Contains(t, got, "use {{.Foo}} here")
	assert.Contains(t, got, "d = {'a': {{1}}}")
}

func TestExplanation(t *testing.T) {
	got := prompt.Explanation("print('hi')")
	assert.Equal(t, "Explain the functionality of the following Python code:\n\nprint('hi')\n\n", got)
}

package prompt

import (
	"bytes"
	"text/template"
)

const (
	completionPrompt = `Below are the instructions and previous code:

{{.Instructions}}

Current Code Cell:
{{.Code}}

Complete the code in the 'Current Code Cell' based on the instructions. Only return the code itself, as it will be placed in a code cell in a Jupyter notebook. Do not wrap it in markdown code fences and do not add any explanation.`

	explanationPrompt = `Explain the functionality of the following Python code:

{{.Code}}

`
)

var (
	completionTemplate  = template.Must(template.New("completion").Parse(completionPrompt))
	explanationTemplate = template.Must(template.New("explanation").Parse(explanationPrompt))
)

// Completion renders the request asking the model to finish code using the
// accumulated instructions.
func Completion(instructions, code string) string {
	return render(completionTemplate, struct {
		Instructions string
		Code         string
	}{
		Instructions: instructions,
		Code:         code,
	})
}

// Explanation renders the request asking the model to explain code.
func Explanation(code string) string {
	return render(explanationTemplate, struct{ Code string }{Code: code})
}

// render panics on error: the templates are fixed and only take strings.
func render(t *template.Template, data any) string {
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}

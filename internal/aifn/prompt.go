package aifn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

const defaultSystemPrompt = `Your job is to generate likely outputs for a function with the
following signature and description:

{{.Signature}}
{{- with .Description}}

{{.}}
{{- end}}

The user will provide function inputs (if any) and you must respond with
the most likely result.`

var userPrompt = template.Must(template.New("user").Funcs(template.FuncMap{"json": toJSON}).Parse(
	"The function was called with the following inputs:" +
		"{{range .Arguments}}\n- {{.Name}}: {{json .Value}}{{else}}\n(no inputs){{end}}" +
		"\n\nWhat is its output?"))

type promptData struct {
	Name        string
	Signature   string
	Description string
	Arguments   []argument
}

func parsePrompt(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{"json": toJSON}).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt for %s: %w", name, err)
	}

	return tmpl, nil
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}

// renders a definition as "name(a: integer = 2, b: string) -> T"
func signature(def Definition, returns string) string {
	params := make([]string, len(def.Params))

	for i, p := range def.Params {
		t := p.Type
		if t == "" {
			t = TypeString
		}

		s := fmt.Sprintf("%s: %s", p.Name, t)
		if p.Default != nil {
			s += " = " + toJSON(p.Default)
		}
		params[i] = s
	}

	return fmt.Sprintf("%s(%s) -> %s", def.Name, strings.Join(params, ", "), returns)
}

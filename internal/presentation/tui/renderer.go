package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/halden-bio/catalyst/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// It uses a dark theme by default, but could be configurable.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// FormatResult renders a step result for the terminal. Text payloads go
// through the markdown renderer; structured payloads are pretty-printed
// as JSON; image payloads are summarized, since a terminal cannot show
// the image itself.
func FormatResult(render func(string) (string, error), step domain.StepID, result *domain.StepResult) string {
	if result == nil {
		return fmt.Sprintf("%s: no result yet\n", domain.StepName(step))
	}

	var b strings.Builder
	switch result.Kind {
	case domain.KindText:
		text, _ := result.Payload[domain.FieldText].(string)
		if out, err := render(text); err == nil {
			b.WriteString(out)
		} else {
			b.WriteString(text)
			b.WriteString("\n")
		}

	case domain.KindStructured:
		pretty, err := json.MarshalIndent(result.Payload, "", "  ")
		if err != nil {
			b.WriteString(fmt.Sprintf("%v\n", result.Payload))
		} else {
			b.Write(pretty)
			b.WriteString("\n")
		}

	case domain.KindImageText:
		data, _ := result.Payload[domain.FieldImageData].(string)
		b.WriteString(fmt.Sprintf("[image: %d bytes base64]\n", len(data)))
	}

	if result.Explanation != "" {
		if out, err := render(result.Explanation); err == nil {
			b.WriteString(out)
		} else {
			b.WriteString(result.Explanation)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Package llm generates grounded answers from retrieved passages. The
// completion backend is chosen per provider; the prompt contract is shared.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/elenchus/platon/internal/store"
)

// Completer produces an answer to a question given assembled context.
type Completer interface {
	// Complete generates an answer for the question using the prompt context.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the completion model identifier.
	ModelName() string

	// Close releases backend resources.
	Close() error
}

// promptTemplate frames the assistant as a scholar of Plato answering only
// from the provided passages, in the language of the question.
const promptTemplate = `Eres un asistente especializado en la filosofía de Platón.
Responde a la pregunta usando únicamente los pasajes proporcionados.
Si los pasajes no contienen la respuesta, dilo explícitamente.
Cita el diálogo del que procede cada idea que uses.

Pasajes:
%s

Pregunta: %s

Respuesta:`

// BuildPrompt assembles the completion prompt from retrieved passages.
func BuildPrompt(question string, passages []store.SearchResult) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] ", i+1)
		if p.Document.Meta.Dialogue != "" {
			fmt.Fprintf(&b, "(%s", p.Document.Meta.Dialogue)
			if p.Document.Meta.Book != "" {
				fmt.Fprintf(&b, ", libro %s", p.Document.Meta.Book)
			}
			b.WriteString(") ")
		} else if p.Document.Meta.Source != "" {
			fmt.Fprintf(&b, "(%s) ", p.Document.Meta.Source)
		}
		b.WriteString(p.Document.Content)
		b.WriteString("\n\n")
	}

	return fmt.Sprintf(promptTemplate, strings.TrimSpace(b.String()), question)
}

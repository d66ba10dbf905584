// Package corpus loads the fixed analyzed corpus of Platonic texts: a JSON
// export of dialogue passages with NLP annotations (concept tags, syntactic
// complexity). The corpus is read-only input; it is never modified, only
// merged into provider collections.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	platonerrors "github.com/elenchus/platon/internal/errors"
)

// Entry is one analyzed passage from the corpus file.
// Field tags follow the Spanish keys of the NLP export.
type Entry struct {
	Title    string    `json:"titulo"`
	Category string    `json:"tipo"`
	Text     string    `json:"texto"`
	Dialogue string    `json:"dialogo"`
	Book     string    `json:"libro"`
	Concepts []Concept `json:"conceptos_filosoficos"`
	Analysis Analysis  `json:"analisis_spacy"`
}

// Concept is a tagged philosophical concept found in a passage.
type Concept struct {
	Name string `json:"concepto"`
}

// Analysis holds the spaCy-derived metrics kept from the NLP export.
type Analysis struct {
	Complexity Complexity `json:"complejidad_sintactica"`
}

// Complexity captures the syntactic complexity metrics of a passage.
type Complexity struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// ConceptNames returns the passage's concept tags as a comma-joined string
// suitable for metadata storage.
func (e Entry) ConceptNames() string {
	if len(e.Concepts) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Concepts))
	for _, c := range e.Concepts {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ",")
}

// Load reads and parses the corpus file at path.
// A missing or unparseable file is a fatal corpus load error; an empty corpus
// is rejected as well, since an assistant with nothing to retrieve from is
// useless.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, platonerrors.CorpusLoadError(path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, platonerrors.CorpusLoadError(path, fmt.Errorf("invalid corpus JSON: %w", err))
	}

	if len(entries) == 0 {
		return nil, platonerrors.New(
			platonerrors.ErrCodeCorpusEmpty,
			fmt.Sprintf("corpus file %s contains no entries", path),
			nil,
		).WithSuggestion("regenerate the corpus export or point PLATON_CORPUS_PATH at a valid file")
	}

	return entries, nil
}

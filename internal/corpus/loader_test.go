package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platonerrors "github.com/elenchus/platon/internal/errors"
)

const sampleCorpus = `[
	{
		"titulo": "República Libro VII",
		"tipo": "diálogo",
		"texto": "Imagina unos hombres en una caverna subterránea.",
		"dialogo": "República",
		"libro": "VII",
		"conceptos_filosoficos": [
			{"concepto": "conocimiento"},
			{"concepto": "educación"}
		],
		"analisis_spacy": {
			"complejidad_sintactica": {"avg_sentence_length": 18.4}
		}
	},
	{
		"titulo": "Fedón",
		"tipo": "diálogo",
		"texto": "El alma es semejante a lo divino, inmortal e inteligible.",
		"dialogo": "Fedón",
		"libro": "",
		"conceptos_filosoficos": [],
		"analisis_spacy": {
			"complejidad_sintactica": {"avg_sentence_length": 12.0}
		}
	}
]`

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platon_analisis_nlp.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ParsesEntries(t *testing.T) {
	path := writeCorpusFile(t, sampleCorpus)

	entries, err := Load(path)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "República Libro VII", entries[0].Title)
	assert.Equal(t, "VII", entries[0].Book)
	assert.Equal(t, "conocimiento,educación", entries[0].ConceptNames())
	assert.InDelta(t, 18.4, entries[0].Analysis.Complexity.AvgSentenceLength, 1e-9)
	assert.Empty(t, entries[1].ConceptNames())
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))

	require.Error(t, err)
	assert.Equal(t, platonerrors.ErrCodeCorpusLoad, platonerrors.GetCode(err))
	assert.True(t, platonerrors.IsFatal(err))
}

func TestLoad_InvalidJSONIsFatal(t *testing.T) {
	path := writeCorpusFile(t, "{not json")

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, platonerrors.ErrCodeCorpusLoad, platonerrors.GetCode(err))
}

func TestLoad_EmptyCorpusRejected(t *testing.T) {
	path := writeCorpusFile(t, "[]")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, platonerrors.New(platonerrors.ErrCodeCorpusEmpty, "", nil)))
	assert.True(t, platonerrors.IsFatal(err))
}

func TestCache_LoadsOnceAndReloads(t *testing.T) {
	path := writeCorpusFile(t, sampleCorpus)
	cache := NewCache(path)

	assert.Zero(t, cache.Len())

	entries, err := cache.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Rewrite the file; the cache keeps serving the parsed copy
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	entries, err = cache.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Reload re-reads and surfaces the now-empty corpus
	_, err = cache.Reload()
	require.Error(t, err)
	assert.Equal(t, platonerrors.ErrCodeCorpusEmpty, platonerrors.GetCode(err))
}

func TestCache_FailureIsNotSticky(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platon_analisis_nlp.json")
	cache := NewCache(path)

	// Given: the corpus file does not exist yet
	_, err := cache.Entries()
	require.Error(t, err)

	// When: the file appears later
	require.NoError(t, os.WriteFile(path, []byte(sampleCorpus), 0o644))

	// Then: the next access succeeds without an explicit reload
	entries, err := cache.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "triggers.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoad_ValidDocument(t *testing.T) {
	file := writeTemp(t, `{"system": {"test": 99}, "scenes": {"intro": {"start": 11}}}`)

	doc, err := Load(file)
	require.NoError(t, err)

	code, err := doc.Resolve("system.test")
	require.NoError(t, err)
	assert.Equal(t, int64(99), code)

	code, err = doc.Resolve("scenes.intro.start")
	require.NoError(t, err)
	assert.Equal(t, int64(11), code)
}

func TestLoad_FlatDocument(t *testing.T) {
	file := writeTemp(t, `{"scenes.intro.start": 11}`)

	doc, err := Load(file)
	require.NoError(t, err)

	code, err := doc.Resolve("scenes.intro.start")
	require.NoError(t, err)
	assert.Equal(t, int64(11), code)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestLoad_MalformedJSON(t *testing.T) {
	file := writeTemp(t, `{"system": `)

	_, err := Load(file)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestLoad_NonIntegerLeafRejected(t *testing.T) {
	file := writeTemp(t, `{"system": {"test": "not a code"}}`)

	_, err := Load(file)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestLoad_FloatLeafRejected(t *testing.T) {
	file := writeTemp(t, `{"system": {"test": 1.5}}`)

	_, err := Load(file)
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestParse_LargeCodeSurvives(t *testing.T) {
	doc, err := Parse([]byte(`{"big": 9007199254740993}`))
	require.NoError(t, err)

	// 2^53+1 is not representable as float64; json.Number keeps it exact.
	code, err := doc.Resolve("big")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), code)
}

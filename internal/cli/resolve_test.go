package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurokit/triggerline/internal/testutil"
)

func TestResolveCommand_Text(t *testing.T) {
	tr := testutil.NewRecordingTransport()

	out, err := execute(t, tr, "resolve", "scenes.intro.start", "--mappings", "testdata/triggers.json")
	require.NoError(t, err)
	assert.Equal(t, "scenes.intro.start = 11\n", out)
	assert.Empty(t, tr.Requests(), "resolve makes no network call")
}

func TestResolveCommand_JSONGolden(t *testing.T) {
	tr := testutil.NewRecordingTransport()

	out, err := execute(t, tr, "resolve", "scenes.intro.start", "--mappings", "testdata/triggers.json", "--format", "json")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "resolve_json", []byte(out))
}

func TestResolveCommand_BuiltInMappingWithoutFile(t *testing.T) {
	tr := testutil.NewRecordingTransport()

	out, err := execute(t, tr, "resolve", "system.error")
	require.NoError(t, err)
	assert.Equal(t, "system.error = 99\n", out)
}

func TestResolveCommand_NotFound(t *testing.T) {
	tr := testutil.NewRecordingTransport()

	out, err := execute(t, tr, "resolve", "scenes.missing", "--mappings", "testdata/triggers.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")
}

func TestValidateCommand_Valid(t *testing.T) {
	tr := testutil.NewRecordingTransport()

	out, err := execute(t, tr, "validate", "testdata/triggers.json")
	require.NoError(t, err)
	assert.Contains(t, out, "valid, 5 event paths")
}

func TestValidateCommand_InvalidDocument(t *testing.T) {
	tr := testutil.NewRecordingTransport()

	out, err := execute(t, tr, "validate", "testdata/block.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "MAPPING_LOAD_FAILURE")
}

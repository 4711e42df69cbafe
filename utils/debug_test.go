package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugManagerSaveRound(t *testing.T) {
	dir := t.TempDir()
	dm := NewDebugManager(NewNopLogger(), DebugOptions{
		Enabled:    true,
		SaveToFile: true,
		OutputDir:  dir,
	})

	dm.SaveRound(1, map[string]any{"score": 72})

	matches, err := filepath.Glob(filepath.Join(dir, "round_1_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `"score": 72`)
}

func TestDebugManagerDisabledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	dm := NewDebugManager(NewNopLogger(), DebugOptions{
		Enabled:    false,
		SaveToFile: true,
		OutputDir:  dir,
	})

	dm.SaveRound(1, map[string]any{"score": 72})
	dm.LogPrompt("critique", "prompt body")
	dm.LogResponse("critique", "response body")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDebugManagerLogPromptAndResponse(t *testing.T) {
	dir := t.TempDir()
	dm := NewDebugManager(NewNopLogger(), DebugOptions{
		Enabled:      true,
		SaveToFile:   true,
		LogPrompts:   true,
		LogResponses: true,
		OutputDir:    dir,
	})

	dm.LogPrompt("meta", "judge this rubric")
	dm.LogResponse("meta", "rubric verdict")

	prompts, err := filepath.Glob(filepath.Join(dir, "prompt_meta_*.txt"))
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	content, err := os.ReadFile(prompts[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "judge this rubric")

	responses, err := filepath.Glob(filepath.Join(dir, "response_meta_*.txt"))
	require.NoError(t, err)
	require.Len(t, responses, 1)
}

package recorder

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonefall/oscrec/internal/domain"
)

func TestFileRecorderFlushWritesJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.json")
	r, err := NewFileRecorder(path, FormatJSON)
	require.NoError(t, err)

	require.NoError(t, r.Append(&domain.Entry{Time: 0, Record: domain.Record{"address": "/x", "args": []any{1.0, 2.0}}}))
	require.NoError(t, r.Append(&domain.Entry{Time: 0.5, Record: domain.Record{"address": "/x", "args": []any{3.0}}}))
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "/x", got[0]["address"])
	assert.Equal(t, 0.0, got[0]["time"])
	assert.Equal(t, 0.5, got[1]["time"])
	assert.Equal(t, []any{3.0}, got[1]["args"])
}

func TestFileRecorderFlushIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "take.json")
	r, err := NewFileRecorder(path, FormatJSON)
	require.NoError(t, err)

	require.NoError(t, r.Append(&domain.Entry{Time: 0, Record: domain.Record{"address": "/a"}}))
	require.NoError(t, r.Flush())
	require.NoError(t, r.Append(&domain.Entry{Time: 1, Record: domain.Record{"address": "/b"}}))
	require.NoError(t, r.Close())

	// no temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, f := range files {
		assert.False(t, strings.Contains(f.Name(), ".tmp-"), "leftover temp file %s", f.Name())
	}

	var got []map[string]any
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got, 2)
}

func TestFileRecorderJSONLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.jsonl")
	r, err := NewFileRecorder(path, FormatJSONL)
	require.NoError(t, err)

	require.NoError(t, r.Append(&domain.Entry{Time: 0, Record: domain.Record{"address": "/a"}}))
	require.NoError(t, r.Append(&domain.Entry{Time: 0.1, Record: domain.Record{"address": "/b"}}))
	require.NoError(t, r.Flush())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj))
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines)
}

func TestFileRecorderEmptyLogFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	r, err := NewFileRecorder(path, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestNewFileRecorderRejectsBadDestination(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// parent "directory" is a regular file
	_, err := NewFileRecorder(filepath.Join(blocker, "take.json"), FormatJSON)
	assert.Error(t, err)

	_, err = NewFileRecorder("", FormatJSON)
	assert.Error(t, err)

	_, err = NewFileRecorder(filepath.Join(dir, "take.bin"), "xml")
	assert.Error(t, err)
}

//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTasksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	body := `[
		{"name": "Build", "actors": "Programmer", "man_days": 10, "start_day": 1, "duration_days": 5},
		{"name": "Test", "actors": "Quality Assurance", "man_days": 4, "start_day": 6, "duration_days": 4}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	tasks, err := readTasksFile(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Build", tasks[0].Name)
	assert.Equal(t, "Programmer", tasks[0].Actors)
	assert.Equal(t, 10.0, tasks[0].ManDays)
	assert.Equal(t, 6, tasks[1].StartDay)
}

func TestReadTasksFile_Missing(t *testing.T) {
	_, err := readTasksFile("/nonexistent/tasks.json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read tasks file")
}

func TestReadTasksFile_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"}`), 0o600))

	_, err := readTasksFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse tasks file")
}

func TestReadTasksFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	_, err := readTasksFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "has no tasks")
}

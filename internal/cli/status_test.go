package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luasharp/internal/store"
)

func TestStatusBeforeFirstBuild(t *testing.T) {
	dir := newWorkDir(t, map[string][]byte{"A.cs": []byte(sampleSource)})

	stdout, _, err := execute(t, "status", dir)
	require.NoError(t, err)
	assert.Equal(t, "No builds recorded\n", stdout)
}

func TestStatusAfterBuild(t *testing.T) {
	dir := newWorkDir(t, map[string][]byte{
		"A.cs":   []byte(sampleSource),
		"Bad.cs": {0xff},
	})
	_, _, err := execute(t, dir)
	require.Error(t, err)

	stdout, _, err := execute(t, "status", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(full, #1): built 1, skipped 0, failed 1")
	assert.Contains(t, stdout, "  built   A.cs -> A.lua\n")
	assert.Contains(t, stdout, "  failed  Bad.cs: ")
}

func TestStatusJSON(t *testing.T) {
	dir := newWorkDir(t, map[string][]byte{"A.cs": []byte(sampleSource)})
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	_, _, err = execute(t, dir)
	require.NoError(t, err)

	stdout, _, err := execute(t, "--format", "json", "status", dir)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   StatusResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Data.LastBuild)
	assert.Equal(t, int64(2), resp.Data.LastBuild.Seq)
	assert.Equal(t, 1, resp.Data.LastBuild.Skipped)
	require.Len(t, resp.Data.Files, 1)
	assert.Equal(t, store.StatusSkipped, resp.Data.Files[0].Status)
}

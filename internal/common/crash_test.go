package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	previous := CrashLogDir
	t.Cleanup(func() { CrashLogDir = previous })

	dir := filepath.Join(t.TempDir(), "logs")
	SetCrashLogDir(filepath.Join(dir, "doccrawl.log"))
	assert.Equal(t, dir, CrashLogDir)

	path := WriteCrashFile("engine exploded", "goroutine 1 [running]:\nmain.main()")
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "crash-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "engine exploded")
	assert.Contains(t, string(data), "main.main()")
	assert.Contains(t, string(data), "DOCCRAWL CRASH REPORT")
}

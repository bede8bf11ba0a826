package tempfiles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

func newManager(t *testing.T) (*Manager, string, string) {
	t.Helper()

	root := t.TempDir()
	uploadDir := filepath.Join(root, "uploads")
	outputDir := filepath.Join(root, "compressed")

	m, err := New(uploadDir, outputDir, logger.New("error"))
	require.NoError(t, err)
	return m, uploadDir, outputDir
}

func TestNewCreatesDirectories(t *testing.T) {
	_, uploadDir, outputDir := newManager(t)

	for _, dir := range []string{uploadDir, outputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestStage(t *testing.T) {
	m, uploadDir, _ := newManager(t)

	staged, err := m.Stage(strings.NewReader("%PDF-1.4 payload"))
	require.NoError(t, err)

	assert.Equal(t, int64(len("%PDF-1.4 payload")), staged.Size)
	assert.Equal(t, uploadDir, filepath.Dir(staged.Path))

	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 payload", string(data))
}

func TestStagePathsAreUnique(t *testing.T) {
	m, _, _ := newManager(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		staged, err := m.Stage(strings.NewReader("x"))
		require.NoError(t, err)
		assert.False(t, seen[staged.Path])
		seen[staged.Path] = true
	}
}

func TestReserveOutputDoesNotCreateFile(t *testing.T) {
	m, _, outputDir := newManager(t)

	first := m.ReserveOutput()
	second := m.ReserveOutput()

	assert.Equal(t, outputDir, filepath.Dir(first.Path))
	assert.NotEqual(t, first.Path, second.Path)

	_, err := os.Stat(first.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRelease(t *testing.T) {
	m, _, _ := newManager(t)

	staged, err := m.Stage(strings.NewReader("payload"))
	require.NoError(t, err)
	reserved := m.ReserveOutput()

	m.Release(staged, reserved)
	_, statErr := os.Stat(staged.Path)
	assert.True(t, os.IsNotExist(statErr))

	// Releasing again, or releasing a zero value, is harmless.
	m.Release(staged, reserved)
	m.Release(entity.StagedFile{})
}

package compression

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/internal/tempfiles"
	"github.com/mkatbalasd/PDFCompress/pkg/ghostscript"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

const fakeEngineScript = `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
done
printf 'compressed' > "$out"
`

func newTestUsecase(t *testing.T, engineBody string) (*CompressionUsecase, string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stub")
	}

	root := t.TempDir()
	uploadDir := filepath.Join(root, "uploads")
	outputDir := filepath.Join(root, "compressed")

	l := logger.New("error")
	tmp, err := tempfiles.New(uploadDir, outputDir, l)
	require.NoError(t, err)

	enginePath := filepath.Join(root, "gs")
	require.NoError(t, os.WriteFile(enginePath, []byte(engineBody), 0o755))
	engine := ghostscript.NewExecutor(enginePath, 10*time.Second, l)

	return NewCompressionUsecase(tmp, engine, nil, l), uploadDir, outputDir
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestCompress(t *testing.T) {
	uc, uploadDir, outputDir := newTestUsecase(t, fakeEngineScript)

	outcome, cleanup, err := uc.Compress(context.Background(), entity.CompressionRequest{
		Data:      []byte("%PDF-1.4 original payload"),
		Filename:  "report.pdf",
		Profile:   entity.ProfileLow,
		RequestID: "req-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "report-compressed.pdf", outcome.DownloadName)
	assert.Equal(t, int64(len("%PDF-1.4 original payload")), outcome.OriginalBytes)
	assert.Equal(t, int64(len("compressed")), outcome.CompressedBytes)
	assert.Equal(t, entity.ProfileLow, outcome.Profile)
	assert.Equal(t, "req-1", outcome.RequestID)

	data, err := os.ReadFile(outcome.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "compressed", string(data))

	cleanup()
	assert.Equal(t, 0, dirEntries(t, uploadDir))
	assert.Equal(t, 0, dirEntries(t, outputDir))

	// Cleanup is idempotent.
	cleanup()
}

func TestCompressEngineFailureReleasesTempFiles(t *testing.T) {
	uc, uploadDir, outputDir := newTestUsecase(t, "#!/bin/sh\nexit 1\n")

	_, cleanup, err := uc.Compress(context.Background(), entity.CompressionRequest{
		Data:    []byte("%PDF-1.4 payload"),
		Profile: entity.ProfileMedium,
	})

	var engineErr *entity.EngineError
	require.ErrorAs(t, err, &engineErr)

	// Failure paths release eagerly, before the caller's deferred cleanup.
	assert.Equal(t, 0, dirEntries(t, uploadDir))
	assert.Equal(t, 0, dirEntries(t, outputDir))
	cleanup()
}

func TestCompressInvalidProfile(t *testing.T) {
	uc, uploadDir, _ := newTestUsecase(t, fakeEngineScript)

	_, cleanup, err := uc.Compress(context.Background(), entity.CompressionRequest{
		Data:    []byte("%PDF-1.4 payload"),
		Profile: entity.Profile("ultra"),
	})
	assert.ErrorIs(t, err, entity.ErrInvalidProfile)
	assert.Equal(t, 0, dirEntries(t, uploadDir))
	cleanup()
}

func TestDownloadName(t *testing.T) {
	cases := []struct {
		original string
		want     string
	}{
		{"report.pdf", "report-compressed.pdf"},
		{"My Report.pdf", "My_Report-compressed.pdf"},
		{"archive.tar.pdf", "archive.tar-compressed.pdf"},
		{"../../etc/passwd", "passwd-compressed.pdf"},
		{`C:\Users\bob\notes.pdf`, "notes-compressed.pdf"},
		{"wei<rd>name.pdf", "weirdname-compressed.pdf"},
		{"", "document-compressed.pdf"},
		{".pdf", "document-compressed.pdf"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DownloadName(tc.original), "original %q", tc.original)
	}
}

package tempfiles

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

// Manager owns the temporary files of in-flight requests. Paths are
// derived from random identifiers, never from caller-supplied names, so
// concurrent requests cannot collide.
type Manager struct {
	uploadDir string
	outputDir string
	l         logger.Interface
}

func New(uploadDir, outputDir string, l logger.Interface) (*Manager, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Manager{uploadDir: uploadDir, outputDir: outputDir, l: l}, nil
}

// Stage writes the inbound payload to a fresh path in the upload area.
// Every successful Stage must be matched by one Release.
func (m *Manager) Stage(r io.Reader) (entity.StagedFile, error) {
	path := filepath.Join(m.uploadDir, uuid.New().String()+".pdf")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return entity.StagedFile{}, &entity.StagingError{Err: err}
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		m.Release(entity.StagedFile{Path: path})
		return entity.StagedFile{}, &entity.StagingError{Err: err}
	}

	return entity.StagedFile{Path: path, Size: size}, nil
}

// ReserveOutput allocates an unused path in the output area without
// creating the file; the engine creates it.
func (m *Manager) ReserveOutput() entity.StagedFile {
	return entity.StagedFile{Path: filepath.Join(m.outputDir, uuid.New().String()+".pdf")}
}

// Release removes every given file. Already-absent paths count as
// released and failures are logged, never surfaced: by the time cleanup
// runs the response is already determined. Safe to call repeatedly.
func (m *Manager) Release(files ...entity.StagedFile) {
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			m.l.Warn("could not remove temporary file %s: %s", f.Path, err)
		}
	}
}

package ghostscript

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mkatbalasd/PDFCompress/entity"
	"github.com/mkatbalasd/PDFCompress/pkg/logger"
)

const traceName = "ghostscript"

// stderrLimit bounds how much engine output is retained for logs.
const stderrLimit = 4 * 1024

// Executor runs the Ghostscript binary as an isolated child process.
type Executor struct {
	command string
	timeout time.Duration
	l       logger.Interface
}

func NewExecutor(command string, timeout time.Duration, l logger.Interface) *Executor {
	return &Executor{command: command, timeout: timeout, l: l}
}

// Command returns the configured engine executable.
func (e *Executor) Command() string { return e.command }

// Available reports whether the engine binary resolves on this host.
func (e *Executor) Available() bool {
	if e.command == "" {
		return false
	}
	if _, err := exec.LookPath(e.command); err == nil {
		return true
	}
	_, err := os.Stat(e.command)
	return err == nil
}

// Run compresses inputPath into outputPath with the given preset and
// classifies the result: entity.ErrEngineUnavailable when the binary is
// missing, *entity.EngineError on a non-zero exit or empty output,
// entity.ErrEngineTimeout when the configured timeout expires. On
// success it returns the compressed size in bytes.
func (e *Executor) Run(ctx context.Context, inputPath string, preset Preset, keepImages bool, outputPath string) (int64, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("preset", string(preset)))

	if !e.Available() {
		return 0, entity.ErrEngineUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	stderr := &boundedBuffer{limit: stderrLimit}
	cmd := exec.CommandContext(ctx, e.command, Arguments(preset, keepImages, inputPath, outputPath)...)
	cmd.Stderr = stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		e.l.Error("ghostscript timed out after %s: %s", e.timeout, stderr.String())
		return 0, entity.ErrEngineTimeout
	}

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return 0, entity.ErrEngineUnavailable
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		e.l.Error("ghostscript exited with code %d: %s", exitCode, stderr.String())
		return 0, &entity.EngineError{ExitCode: exitCode, Stderr: stderr.String()}
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		// Zero exit but nothing usable was written.
		e.l.Error("ghostscript produced no output: %s", stderr.String())
		return 0, &entity.EngineError{ExitCode: 0, Stderr: stderr.String()}
	}

	return info.Size(), nil
}

// boundedBuffer keeps the first limit bytes and drops the rest.
type boundedBuffer struct {
	limit int
	buf   []byte
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - len(b.buf); remaining > 0 {
		if len(p) > remaining {
			b.buf = append(b.buf, p[:remaining]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string { return string(b.buf) }

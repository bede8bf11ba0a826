package entity

import (
	"errors"
	"fmt"
)

// Profile is the caller-facing compression profile name.
type Profile string

const (
	ProfileLow    Profile = "low"
	ProfileMedium Profile = "medium"
	ProfileHigh   Profile = "high"
)

var (
	ErrInvalidProfile    = errors.New("invalid compression profile")
	ErrUnauthorized      = errors.New("a valid API key is required")
	ErrEngineUnavailable = errors.New("ghostscript is not available")
	ErrEngineTimeout     = errors.New("ghostscript timed out")
)

// StagingError wraps disk failures while persisting an upload.
type StagingError struct {
	Err error
}

func (e *StagingError) Error() string { return "staging upload: " + e.Err.Error() }

func (e *StagingError) Unwrap() error { return e.Err }

// EngineError reports a Ghostscript run that exited non-zero or produced
// no usable output. Stderr holds a bounded excerpt for operator logs and
// must never be echoed to clients.
type EngineError struct {
	ExitCode int
	Stderr   string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ghostscript failed with exit code %d", e.ExitCode)
}

// CompressionRequest is the validated input of one compression, built
// once by the controller and treated as immutable afterwards.
type CompressionRequest struct {
	Data       []byte
	Filename   string
	Profile    Profile
	KeepImages bool
	Caller     *Caller
	RequestID  string
}

// StagedFile is a uniquely named temporary file scoped to one request.
type StagedFile struct {
	Path string
	Size int64
}

// CompressionOutcome is the successful result of an engine invocation.
type CompressionOutcome struct {
	Output          StagedFile
	DownloadName    string
	OriginalBytes   int64
	CompressedBytes int64
	Profile         Profile
	RequestID       string
}

// Ratio returns compressed/original. Size validation upstream guarantees
// a non-empty original.
func (o *CompressionOutcome) Ratio() float64 {
	return float64(o.CompressedBytes) / float64(o.OriginalBytes)
}

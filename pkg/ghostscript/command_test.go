package ghostscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArguments(t *testing.T) {
	args := Arguments(PresetEbook, false, "/tmp/in.pdf", "/tmp/out.pdf")

	assert.Equal(t, []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=/tmp/out.pdf",
		"/tmp/in.pdf",
	}, args)
}

func TestArgumentsKeepImages(t *testing.T) {
	args := Arguments(PresetPrinter, true, "/tmp/in.pdf", "/tmp/out.pdf")

	assert.Contains(t, args, "-dDownsampleColorImages=false")
	assert.Contains(t, args, "-dDownsampleGrayImages=false")
	assert.Contains(t, args, "-dDownsampleMonoImages=false")

	// The input path stays last so the engine reads it after all flags.
	assert.Equal(t, "/tmp/in.pdf", args[len(args)-1])
}

func TestArgumentsWithoutKeepImages(t *testing.T) {
	args := Arguments(PresetScreen, false, "in.pdf", "out.pdf")

	for _, arg := range args {
		assert.NotContains(t, arg, "Downsample")
	}
}

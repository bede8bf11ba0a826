package ghostscript

import "path/filepath"

// Arguments builds the argv tail for one compression run. The output is
// pinned to PDF 1.4 so results do not depend on the installed engine
// version. keepImages disables image downsampling entirely.
func Arguments(preset Preset, keepImages bool, inputPath, outputPath string) []string {
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=" + string(preset),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + normalizePath(outputPath),
	}

	if keepImages {
		args = append(args,
			"-dDownsampleColorImages=false",
			"-dDownsampleGrayImages=false",
			"-dDownsampleMonoImages=false",
		)
	}

	return append(args, normalizePath(inputPath))
}

// Ghostscript accepts forward slashes on every platform.
func normalizePath(path string) string {
	return filepath.ToSlash(path)
}

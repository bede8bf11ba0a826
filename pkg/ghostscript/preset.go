package ghostscript

import "github.com/mkatbalasd/PDFCompress/entity"

// Preset is a Ghostscript -dPDFSETTINGS value.
type Preset string

const (
	// PresetScreen downsamples aggressively, smallest output.
	PresetScreen Preset = "/screen"
	// PresetEbook is the balanced default.
	PresetEbook Preset = "/ebook"
	// PresetPrinter keeps 300dpi images, highest fidelity.
	PresetPrinter Preset = "/printer"
)

// Resolve maps a caller-supplied profile name to an engine preset.
// Profile names are case-sensitive; an empty name defaults to medium.
func Resolve(name string) (entity.Profile, Preset, error) {
	switch name {
	case "":
		return entity.ProfileMedium, PresetEbook, nil
	case string(entity.ProfileLow):
		return entity.ProfileLow, PresetScreen, nil
	case string(entity.ProfileMedium):
		return entity.ProfileMedium, PresetEbook, nil
	case string(entity.ProfileHigh):
		return entity.ProfileHigh, PresetPrinter, nil
	default:
		return "", "", entity.ErrInvalidProfile
	}
}

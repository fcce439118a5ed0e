package provider

import "math"

type AspectPreset struct {
	Name   string
	Width  int
	Height int
}

// Supported output shapes, in tie-break order: when two presets are equally
// close, the earlier entry wins.
var aspectPresets = []AspectPreset{
	{Name: "1:1", Width: 1024, Height: 1024},
	{Name: "4:3", Width: 1152, Height: 864},
	{Name: "3:4", Width: 864, Height: 1152},
	{Name: "16:9", Width: 1280, Height: 720},
	{Name: "9:16", Width: 720, Height: 1280},
	{Name: "4:5", Width: 896, Height: 1120},
}

// SnapAspect picks the preset whose width/height ratio is closest to the
// requested one.
func SnapAspect(width, height int) AspectPreset {
	if width <= 0 || height <= 0 {
		return aspectPresets[0]
	}

	requested := float64(width) / float64(height)
	best := aspectPresets[0]
	bestDiff := math.Abs(requested - float64(best.Width)/float64(best.Height))

	for _, preset := range aspectPresets[1:] {
		diff := math.Abs(requested - float64(preset.Width)/float64(preset.Height))
		if diff < bestDiff {
			best = preset
			bestDiff = diff
		}
	}
	return best
}

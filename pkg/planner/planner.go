// Package planner computes the crop rectangle that keeps a detected
// subject centered in a fixed-size output.
//
// The planner is pure geometry: it never touches pixels, never calls a
// detector, and has no state, so callers may invoke it concurrently for
// distinct images without locking.
package planner

import (
	"math"

	"github.com/mkovac/focusframe/pkg/types"
)

// PlanCrop returns the sub-rectangle of an imgW x imgH image that should
// be extracted before resizing to target. When subject is non-nil the
// crop is centered on the subject's midpoint; otherwise on the image
// center. The origin is clamped so the crop never leaves the image.
//
// Callers must handle sources smaller than the target before planning
// (stretch-to-fit); with target <= image the returned extent is exactly
// the target extent.
func PlanCrop(subject *types.Rect, imgW, imgH int, target types.TargetSize) types.Rect {
	var cx, cy float64
	if subject != nil {
		cx, cy = subject.Center()
	} else {
		cx, cy = float64(imgW)/2, float64(imgH)/2
	}

	// Midpoint first, floor after: deriving the origin from truncated
	// half-extents would shift odd-sized subjects by a pixel.
	startX := int(math.Floor(cx - float64(target.Width)/2))
	startY := int(math.Floor(cy - float64(target.Height)/2))

	startX = clampInt(startX, 0, imgW-target.Width)
	startY = clampInt(startY, 0, imgH-target.Height)

	return types.Rect{
		X:      startX,
		Y:      startY,
		Width:  minInt(target.Width, imgW),
		Height: minInt(target.Height, imgH),
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		// Oversized targets are rejected upstream; degrade to the
		// lower bound instead of returning a negative origin.
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

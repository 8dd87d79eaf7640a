// Package subject locates the focal region of an image.
//
// Detection is layered: a face detector first, a saliency analyzer when
// no face is found, and finally nothing, which callers translate into a
// center crop. Each tier implements Source; the pipeline only depends on
// the optional-rectangle contract, not on which tier produced it.
package subject

import (
	"image"
	"log"

	"github.com/mkovac/focusframe/pkg/types"
)

// Source is a single detection tier. ok is false when the tier found no
// subject; an error means the tier itself failed and the caller should
// fall through to the next tier.
type Source interface {
	Locate(img image.Image) (types.Rect, bool, error)
}

// Locator chains detection tiers in priority order.
type Locator struct {
	sources []Source
}

// NewLocator builds a locator from tiers in priority order. Nil entries
// are dropped so callers can pass optional tiers unconditionally.
func NewLocator(sources ...Source) *Locator {
	l := &Locator{}
	for _, s := range sources {
		if s != nil {
			l.sources = append(l.sources, s)
		}
	}
	return l
}

// Locate returns the first subject any tier reports. A tier error is
// never escalated: detection being unavailable must degrade to the next
// tier and ultimately to a center crop, not fail the frame.
func (l *Locator) Locate(img image.Image) (types.Rect, bool) {
	for _, s := range l.sources {
		r, ok, err := s.Locate(img)
		if err != nil {
			log.Printf("subject: tier failed, falling through: %v", err)
			continue
		}
		if ok {
			return r, true
		}
	}
	return types.Rect{}, false
}

// Close releases tiers that hold native resources.
func (l *Locator) Close() error {
	var first error
	for _, s := range l.sources {
		c, ok := s.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// largest picks the biggest rectangle by area. Detectors return faces in
// arbitrary order; keying on area keeps the choice stable when several
// faces are present.
func largest(rects []image.Rectangle) (types.Rect, bool) {
	if len(rects) == 0 {
		return types.Rect{}, false
	}
	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}
	return types.Rect{X: best.Min.X, Y: best.Min.Y, Width: best.Dx(), Height: best.Dy()}, true
}

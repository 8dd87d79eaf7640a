package subject

import (
	"errors"
	"image"
	"testing"

	"github.com/mkovac/focusframe/pkg/types"
)

type stubSource struct {
	rect types.Rect
	ok   bool
	err  error
}

func (s stubSource) Locate(image.Image) (types.Rect, bool, error) {
	return s.rect, s.ok, s.err
}

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 100, 100))
}

func TestLocatorPrefersFirstTier(t *testing.T) {
	face := stubSource{rect: types.Rect{X: 10, Y: 10, Width: 20, Height: 20}, ok: true}
	salient := stubSource{rect: types.Rect{X: 50, Y: 50, Width: 40, Height: 40}, ok: true}

	r, ok := NewLocator(face, salient).Locate(testFrame())
	if !ok {
		t.Fatal("expected a subject")
	}
	if r != face.rect {
		t.Errorf("subject = %+v, want face tier %+v", r, face.rect)
	}
}

func TestLocatorFallsThroughOnMiss(t *testing.T) {
	face := stubSource{ok: false}
	salient := stubSource{rect: types.Rect{X: 5, Y: 5, Width: 30, Height: 30}, ok: true}

	r, ok := NewLocator(face, salient).Locate(testFrame())
	if !ok || r != salient.rect {
		t.Errorf("got (%+v,%v), want salient tier result", r, ok)
	}
}

func TestLocatorTreatsTierErrorAsMiss(t *testing.T) {
	broken := stubSource{err: errors.New("detector crashed")}
	salient := stubSource{rect: types.Rect{X: 1, Y: 2, Width: 3, Height: 4}, ok: true}

	r, ok := NewLocator(broken, salient).Locate(testFrame())
	if !ok || r != salient.rect {
		t.Errorf("got (%+v,%v), want fall-through past failing tier", r, ok)
	}
}

func TestLocatorReportsNoSubject(t *testing.T) {
	_, ok := NewLocator(stubSource{}, stubSource{err: errors.New("down")}).Locate(testFrame())
	if ok {
		t.Error("expected no subject from empty tiers")
	}
}

func TestLocatorDropsNilSources(t *testing.T) {
	salient := stubSource{rect: types.Rect{X: 1, Y: 1, Width: 2, Height: 2}, ok: true}
	r, ok := NewLocator(nil, salient).Locate(testFrame())
	if !ok || r != salient.rect {
		t.Errorf("got (%+v,%v), want nil tier skipped", r, ok)
	}
}

func TestLargestPicksBiggestFace(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 10, 10),  // area 100
		image.Rect(40, 40, 60, 60), // area 400
		image.Rect(80, 80, 90, 95), // area 150
	}

	r, ok := largest(rects)
	if !ok {
		t.Fatal("expected a rect")
	}
	want := types.Rect{X: 40, Y: 40, Width: 20, Height: 20}
	if r != want {
		t.Errorf("largest = %+v, want %+v", r, want)
	}
}

func TestLargestEmpty(t *testing.T) {
	if _, ok := largest(nil); ok {
		t.Error("expected ok=false for no rects")
	}
}

package planner

import (
	"testing"

	"github.com/mkovac/focusframe/pkg/types"
)

func TestPlanCropStaysInBounds(t *testing.T) {
	cases := []struct {
		name    string
		subject *types.Rect
		imgW    int
		imgH    int
		target  types.TargetSize
	}{
		{"centered subject", &types.Rect{X: 400, Y: 400, Width: 200, Height: 200}, 1000, 1000, types.TargetSize{Width: 400, Height: 300}},
		{"corner subject", &types.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 1000, 1000, types.TargetSize{Width: 200, Height: 200}},
		{"far corner subject", &types.Rect{X: 990, Y: 990, Width: 10, Height: 10}, 1000, 1000, types.TargetSize{Width: 200, Height: 200}},
		{"no subject", nil, 800, 600, types.TargetSize{Width: 800, Height: 600}},
		{"odd extents", &types.Rect{X: 13, Y: 77, Width: 31, Height: 17}, 641, 481, types.TargetSize{Width: 33, Height: 45}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			crop := PlanCrop(tc.subject, tc.imgW, tc.imgH, tc.target)
			if crop.Width != tc.target.Width || crop.Height != tc.target.Height {
				t.Errorf("extent = %dx%d, want %dx%d", crop.Width, crop.Height, tc.target.Width, tc.target.Height)
			}
			if crop.X < 0 || crop.Y < 0 {
				t.Errorf("negative origin (%d,%d)", crop.X, crop.Y)
			}
			if crop.X+crop.Width > tc.imgW || crop.Y+crop.Height > tc.imgH {
				t.Errorf("crop %+v exceeds image %dx%d", crop, tc.imgW, tc.imgH)
			}
		})
	}
}

func TestPlanCropCentersOnSubject(t *testing.T) {
	// Subject center (500,500), far enough from every edge for the
	// crop center to match it exactly.
	subject := &types.Rect{X: 450, Y: 460, Width: 100, Height: 80}
	crop := PlanCrop(subject, 1000, 1000, types.TargetSize{Width: 400, Height: 300})

	wantCx, wantCy := subject.Center()
	gotCx, gotCy := crop.Center()
	if gotCx != wantCx || gotCy != wantCy {
		t.Errorf("crop center = (%v,%v), want (%v,%v)", gotCx, gotCy, wantCx, wantCy)
	}
}

func TestPlanCropClampsNearCorner(t *testing.T) {
	// Subject center at (5,5): the unclamped origin would be negative.
	subject := &types.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	crop := PlanCrop(subject, 1000, 1000, types.TargetSize{Width: 200, Height: 200})

	if crop.X != 0 || crop.Y != 0 {
		t.Errorf("origin = (%d,%d), want (0,0)", crop.X, crop.Y)
	}
	if crop.Width != 200 || crop.Height != 200 {
		t.Errorf("extent = %dx%d, want 200x200", crop.Width, crop.Height)
	}
}

func TestPlanCropClampsNearFarEdge(t *testing.T) {
	subject := &types.Rect{X: 980, Y: 980, Width: 20, Height: 20}
	crop := PlanCrop(subject, 1000, 1000, types.TargetSize{Width: 300, Height: 300})

	if crop.X != 700 || crop.Y != 700 {
		t.Errorf("origin = (%d,%d), want (700,700)", crop.X, crop.Y)
	}
}

func TestPlanCropNoSubjectFallsBackToImageCenter(t *testing.T) {
	crop := PlanCrop(nil, 1000, 1000, types.TargetSize{Width: 400, Height: 300})

	want := types.Rect{X: 300, Y: 350, Width: 400, Height: 300}
	if crop != want {
		t.Errorf("crop = %+v, want %+v", crop, want)
	}
}

func TestPlanCropOddMidpointFloorsOrigin(t *testing.T) {
	// Subject center (50.5, 50.5): origin must floor, not round up.
	subject := &types.Rect{X: 45, Y: 45, Width: 11, Height: 11}
	crop := PlanCrop(subject, 500, 500, types.TargetSize{Width: 100, Height: 100})

	if crop.X != 0 || crop.Y != 0 {
		t.Errorf("origin = (%d,%d), want (0,0)", crop.X, crop.Y)
	}

	subject = &types.Rect{X: 245, Y: 245, Width: 11, Height: 11}
	crop = PlanCrop(subject, 500, 500, types.TargetSize{Width: 100, Height: 100})
	if crop.X != 200 || crop.Y != 200 {
		t.Errorf("origin = (%d,%d), want (200,200)", crop.X, crop.Y)
	}
}

package subject

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/mkovac/focusframe/pkg/types"
)

// Haar cascade parameters. scaleFactor 1.1 / minNeighbors 4 is the usual
// frontal-face sweet spot between recall and false positives.
const (
	faceScaleFactor = 1.1
	faceMinNeighbor = 4
)

// FaceSource detects frontal faces with an OpenCV Haar cascade and
// reports the largest one. The cascade is loaded once and reused for the
// whole batch; call Close when done.
type FaceSource struct {
	classifier gocv.CascadeClassifier
	open       bool
}

// NewFaceSource loads the cascade XML at path.
func NewFaceSource(cascadePath string) (*FaceSource, error) {
	c := gocv.NewCascadeClassifier()
	if !c.Load(cascadePath) {
		c.Close()
		return nil, fmt.Errorf("subject: load cascade %q failed", cascadePath)
	}
	return &FaceSource{classifier: c, open: true}, nil
}

// Locate returns the largest detected face, or ok=false when the frame
// has none.
func (s *FaceSource) Locate(img image.Image) (types.Rect, bool, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return types.Rect{}, false, fmt.Errorf("subject: convert frame: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)

	faces := s.classifier.DetectMultiScaleWithParams(
		gray, faceScaleFactor, faceMinNeighbor, 0, image.Point{}, image.Point{})
	r, ok := largest(faces)
	return r, ok, nil
}

// Close releases the native cascade.
func (s *FaceSource) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.classifier.Close()
}

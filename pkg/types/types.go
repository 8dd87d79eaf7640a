package types

// Rect is an axis-aligned pixel rectangle inside an image's coordinate
// space. Subject rectangles coming from detection are not guaranteed to
// lie inside the image; crop regions produced by the planner are.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Center returns the real-valued midpoint of the rectangle. The midpoint
// is computed before any integer truncation so a rect of odd extent does
// not pick up a systematic half-pixel bias.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

// Area returns the area of the rectangle in pixels.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// TargetSize is the output resolution for a whole batch run.
type TargetSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Caption is the text produced for one image by a vision backend.
type Caption struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// OutputConfig defines how cropped frames are encoded on disk.
type OutputConfig struct {
	Format   string
	Quality  int
	Lossless bool
}

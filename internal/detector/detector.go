package detector

import "gocv.io/x/gocv"

// Label is a gesture category assigned to a detected hand. The vocabulary is
// fixed; anything the classifier cannot place is LabelNone.
type Label string

const (
	// LabelOne is a raised index finger, used for point hover and to
	// complete a click.
	LabelOne Label = "one"
	// LabelGrabbing is an open grabbing pose, used for area hover and
	// sticky-brush dwell.
	LabelGrabbing Label = "grabbing"
	// LabelThumbIndex is a thumb-index pinch, the first phase of a click.
	LabelThumbIndex Label = "thumb_index"
	// LabelOK is the ok sign, used for dragging.
	LabelOK Label = "ok"
	// LabelFist is a closed fist, used for pan and two-handed zoom.
	LabelFist Label = "fist"
	// LabelNone means no recognized gesture.
	LabelNone Label = "none"
)

// Detection is one detected hand in a frame: its landmarks plus the
// classified gesture.
type Detection struct {
	Landmarks  HandLandmarks `json:"landmarks"`
	Label      Label         `json:"label"`
	Confidence float64       `json:"confidence"`
}

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hands with their
	// gesture labels. Returns an empty slice if no hands are detected.
	// Landmark arrays are always fully populated.
	Detect(frame *gocv.Mat) ([]Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinGestureConf is the minimum gesture classification confidence;
	// hands below it are reported with LabelNone.
	MinGestureConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:       2,
		MinConfidence:  0.5,
		MinGestureConf: 0.6,
	}
}

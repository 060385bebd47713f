package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed
// result or as a scripted frame-by-frame sequence.
type MockDetector struct {
	hands  []Detection
	script [][]Detection
	cursor int
	err    error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetDetections sets the detections that will be returned by Detect.
func (m *MockDetector) SetDetections(hands []Detection) {
	m.hands = hands
	m.script = nil
}

// SetScript sets a frame-by-frame sequence of detections. Each call to
// Detect consumes one entry; after the script is exhausted Detect returns
// no hands.
func (m *MockDetector) SetScript(frames [][]Detection) {
	m.script = frames
	m.cursor = 0
	m.hands = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured detections or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Detection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.script != nil {
		if m.cursor >= len(m.script) {
			return nil, nil
		}
		hands := m.script[m.cursor]
		m.cursor++
		return hands, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// poseHand builds a plausible right-hand pose around the given wrist point.
// curl[i] is the curl factor for finger i (thumb to pinky): 0 is fully
// extended away from the wrist, 1 is curled back to the palm. spread widens
// the fingertip fan, used for the grabbing pose.
func poseHand(wrist Point3D, curl [5]float64, spread float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	lm.Points[Wrist] = wrist

	// Finger base directions relative to the wrist, thumb to pinky.
	dirs := [5][2]float64{
		{0.10, -0.04}, // thumb, off to the side
		{0.03, -0.10}, // index
		{0.00, -0.11}, // middle
		{-0.03, -0.10}, // ring
		{-0.06, -0.09}, // pinky
	}

	// Each finger is four joints from MCP/CMC to tip. Extended fingers
	// continue along the base direction; curled ones fold back.
	base := [5]int{ThumbCMC, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	for f := 0; f < 5; f++ {
		dx := dirs[f][0] * (1 + spread)
		dy := dirs[f][1]
		reach := 1.0 - 0.8*curl[f]
		for j := 0; j < 4; j++ {
			t := float64(j+1) / 4.0
			lm.Points[base[f]+j] = Point3D{
				X: wrist.X + dx*(1+3*t*reach),
				Y: wrist.Y + dy*(1+3*t*reach),
				Z: -0.02 * curl[f],
			}
		}
	}

	return lm
}

// PointingLandmarks returns a posed hand for the "one" gesture: index finger
// extended, everything else curled. The index fingertip lands near the given
// normalized position.
func PointingLandmarks(tipX, tipY float64) HandLandmarks {
	wrist := Point3D{X: tipX - 0.12, Y: tipY + 0.40}
	return poseHand(wrist, [5]float64{0.9, 0, 0.9, 0.9, 0.9}, 0)
}

// GrabbingLandmarks returns a posed hand for the "grabbing" gesture: all
// fingers spread and half-curled around the given center.
func GrabbingLandmarks(cx, cy float64) HandLandmarks {
	wrist := Point3D{X: cx, Y: cy + 0.35}
	return poseHand(wrist, [5]float64{0.3, 0.3, 0.3, 0.3, 0.3}, 0.6)
}

// PinchLandmarks returns a posed hand for the "thumb_index" gesture: thumb
// and index tips brought together near the given position.
func PinchLandmarks(tipX, tipY float64) HandLandmarks {
	wrist := Point3D{X: tipX - 0.10, Y: tipY + 0.38}
	return poseHand(wrist, [5]float64{0.5, 0.5, 0.8, 0.8, 0.8}, 0)
}

// OKSignLandmarks returns a posed hand for the "ok" gesture with the thumb
// tip near the given position.
func OKSignLandmarks(tipX, tipY float64) HandLandmarks {
	wrist := Point3D{X: tipX - 0.10, Y: tipY + 0.38}
	return poseHand(wrist, [5]float64{0.6, 0.6, 0.1, 0.1, 0.1}, 0)
}

// FistLandmarks returns a posed hand for the "fist" gesture: every finger
// curled, index fingertip near the given position.
func FistLandmarks(tipX, tipY float64) HandLandmarks {
	wrist := Point3D{X: tipX - 0.05, Y: tipY + 0.15}
	return poseHand(wrist, [5]float64{1, 1, 1, 1, 1}, 0)
}

// Detected wraps landmarks with a label and confidence into a Detection,
// a convenience for tests and fixtures.
func Detected(lm HandLandmarks, label Label) Detection {
	return Detection{Landmarks: lm, Label: label, Confidence: 0.9}
}

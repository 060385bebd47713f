// Package detector provides hand detection and gesture classification types
// for the Mudra interaction pipeline.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a normalized landmark position. X and Y are in [0,1]
// relative to the frame; Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// fingertipIndices are the five fingertip landmarks, thumb to pinky.
var fingertipIndices = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Fingertips returns the five fingertip points, thumb to pinky.
func (h *HandLandmarks) Fingertips() [5]Point3D {
	var tips [5]Point3D
	for i, idx := range fingertipIndices {
		tips[i] = h.Points[idx]
	}
	return tips
}

// IndexFingertip returns the index fingertip point, the primary pointer
// position for point-based gestures.
func (h *HandLandmarks) IndexFingertip() Point3D {
	return h.Points[IndexTip]
}

// ThumbFingertip returns the thumb tip point, used as the grab point for
// drag gestures.
func (h *HandLandmarks) ThumbFingertip() Point3D {
	return h.Points[ThumbTip]
}

package app

import (
	"log"
	"sort"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/interact"
)

// runPipeline is the frame loop. Every tick reads a frame, detects hands,
// maps their landmarks into page space and evaluates the gesture machines.
// The tick rate follows activity: capture.ActiveFPS while motion or hands
// are seen, capture.IdleFPS after IdleTimeout of stillness. Detection runs
// in both modes so a perfectly still hand (a brush dwell, a held hover)
// keeps its machine state alive.
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastActivity := time.Now()

	frameInterval := time.Second / time.Duration(capture.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	sceneTicker := time.NewTicker(SceneRefreshInterval)
	defer sceneTicker.Stop()

	for {
		select {
		case <-stopCh:
			return

		case <-sceneTicker.C:
			a.scene.Refresh()

		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			d := a.Detector()
			if d == nil {
				frame.Close()
				continue
			}
			hands, err := d.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}
			a.setDetections(hands)

			now := time.Now()
			if motionDetected || len(hands) > 0 {
				lastActivity = now
				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(capture.ActiveFPS)
					ticker.Reset(time.Second / time.Duration(capture.ActiveFPS))
					log.Println("Switched to active mode")
				}
			} else if activeMode && now.Sub(lastActivity) > IdleTimeout {
				activeMode = false
				a.Camera().SetFPS(capture.IdleFPS)
				ticker.Reset(time.Second / time.Duration(capture.IdleFPS))
				log.Println("Switched to idle mode")
			}

			a.machines.Evaluate(a.buildInputs(hands), now)
		}
	}
}

// buildInputs maps detections into page space and assigns them to hand
// slots. With two hands the leftmost one on screen takes the left slot;
// a lone hand takes the slot of the screen half it appears in. Extra
// detections beyond two are dropped.
func (a *App) buildInputs(hands []detector.Detection) []interact.HandInput {
	if len(hands) == 0 {
		return nil
	}

	type placed struct {
		det  *detector.Detection
		tipX float64
	}
	ps := make([]placed, 0, len(hands))
	for i := range hands {
		wrist := a.config.Mapper.ToClient(hands[i].Landmarks.Points[detector.Wrist])
		ps = append(ps, placed{det: &hands[i], tipX: wrist.X})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].tipX < ps[j].tipX })
	if len(ps) > 2 {
		ps = ps[:2]
	}

	var inputs []interact.HandInput
	if len(ps) == 1 {
		mid := a.config.Mapper.VideoRect.X + a.config.Mapper.VideoRect.W/2
		slot := interact.HandLeft
		if ps[0].tipX >= mid {
			slot = interact.HandRight
		}
		inputs = append(inputs, a.toInput(ps[0].det, slot))
	} else {
		inputs = append(inputs,
			a.toInput(ps[0].det, interact.HandLeft),
			a.toInput(ps[1].det, interact.HandRight),
		)
	}
	return inputs
}

func (a *App) toInput(d *detector.Detection, slot interact.HandSlot) interact.HandInput {
	in := interact.HandInput{
		Slot:       slot,
		Label:      d.Label,
		Confidence: d.Confidence,
		Landmarks:  &d.Landmarks,
		IndexTip:   a.config.Mapper.ToClient(d.Landmarks.IndexFingertip()),
		ThumbTip:   a.config.Mapper.ToClient(d.Landmarks.ThumbFingertip()),
	}
	for i, tip := range d.Landmarks.Fingertips() {
		in.Fingertips[i] = a.config.Mapper.ToClient(tip)
	}
	return in
}

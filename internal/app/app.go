// Package app wires capture, hand detection, coordinate mapping and the
// gesture machines into the frame-processing pipeline of one session.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/scene"
)

// Pipeline timing constants.
const (
	// IdleTimeout is how long the scene must be still, with no hands in
	// frame, before the pipeline drops to the idle rate.
	IdleTimeout = 2 * time.Second
	// SceneRefreshInterval is the spatial index rebuild cadence, decoupled
	// from the frame rate.
	SceneRefreshInterval = 100 * time.Millisecond
)

// Config holds configuration options for the application.
type Config struct {
	CameraID     int
	MotionThresh float64
	// Mapper converts normalized landmarks into page space.
	Mapper coords.Mapper
	// Machine overrides the gesture machine timings; the zero value means
	// defaults.
	Machine interact.Config
	// Shared is the arbiter's pre-emission hover check. May be nil.
	Shared interact.SharedState
}

// App owns the session pipeline: one camera, one detector, two hand
// machines and the scene they hit-test against.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	scene      *scene.Scene
	dispatcher *interact.Dispatcher
	machines   *interact.Machines

	mu       sync.RWMutex
	detector detector.Detector
	enabled  bool
	stopCh   chan struct{}

	viewMu sync.RWMutex
	view   coords.TransformFunc

	detectionsMu sync.RWMutex
	detections   []detector.Detection
}

// New creates an App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0
	}
	machineCfg := config.Machine
	if machineCfg == (interact.Config{}) {
		machineCfg = interact.DefaultMachineConfig()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		scene:      scene.New(),
		dispatcher: interact.NewDispatcher(),
	}
	a.machines = interact.NewMachines(machineCfg, a.scene, config.Shared, a.dispatcher, a.currentTransform, uuid.NewString)

	// Try MediaPipe first, fall back to the mock detector.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture processing. The pipeline keeps
// ticking while disabled but skips every frame.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector implementation.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. Only effective before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// MountVisualization attaches the active visualization: its event consumer
// and its pan/zoom transform accessor. Any previous mount is replaced.
func (a *App) MountVisualization(view coords.TransformFunc, consumer interact.Consumer) {
	a.viewMu.Lock()
	a.view = view
	a.viewMu.Unlock()
	a.dispatcher.SetConsumer(consumer)
}

// UnmountVisualization detaches the consumer and clears all gesture and
// scene state. In-flight interactions end without emitting events.
func (a *App) UnmountVisualization() {
	a.dispatcher.Detach()
	a.machines.Reset()
	a.scene.Clear()
	a.viewMu.Lock()
	a.view = nil
	a.viewMu.Unlock()
}

// currentTransform is the pull accessor handed to the machines: it reads
// the mounted visualization's transform, nil when nothing is mounted.
func (a *App) currentTransform() *coords.Transform {
	a.viewMu.RLock()
	view := a.view
	a.viewMu.RUnlock()
	if view == nil {
		return nil
	}
	return view()
}

// Start begins the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Gesture pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Gesture pipeline stopped")
}

// Detections returns the hands seen in the most recent processed frame.
func (a *App) Detections() []detector.Detection {
	a.detectionsMu.RLock()
	defer a.detectionsMu.RUnlock()
	out := make([]detector.Detection, len(a.detections))
	copy(out, a.detections)
	return out
}

func (a *App) setDetections(hands []detector.Detection) {
	a.detectionsMu.Lock()
	a.detections = hands
	a.detectionsMu.Unlock()
}

// Scene returns the scene registry the visualization populates.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Dispatcher returns the interaction event dispatcher.
func (a *App) Dispatcher() *interact.Dispatcher {
	return a.dispatcher
}

// Machines returns the gesture machines, mainly for introspection.
func (a *App) Machines() *interact.Machines {
	return a.machines
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

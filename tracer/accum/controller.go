// Package accum decides frame by frame whether progressive samples remain
// valid, whether another launch should be issued and whether the result
// should be presented.
package accum

import (
	"fmt"
	"time"

	"github.com/surajsubudhi10/PistonOptix/log"
)

// State of the accumulation state machine.
type State uint8

const (
	// No samples accumulated since the last restart.
	Reset State = iota

	// Samples are accumulated and more launches are allowed.
	Accumulating

	// The sample cap has been reached; no launches until a restart or a cap
	// increase.
	Capped
)

func (s State) String() string {
	switch s {
	case Reset:
		return "reset"
	case Accumulating:
		return "accumulating"
	case Capped:
		return "capped"
	}

	panic(fmt.Sprintf("accum: unsupported state %d", uint8(s)))
}

// Clock abstracts wall-clock time so the present gate can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

// DefaultPresentInterval is the display refresh interval used when the
// present policy does not refresh on every frame.
const DefaultPresentInterval = time.Second

type Options struct {
	// Maximum number of launches before the controller enters the capped
	// state. 0 accumulates forever.
	Cap uint32

	// Present every completed launch instead of once per PresentInterval.
	PresentEveryFrame bool

	PresentInterval time.Duration
}

// Controller implements the accumulation state machine.
type Controller struct {
	logger log.Logger
	clock  Clock

	state     State
	iteration uint32
	cap       uint32
	resets    int

	presentEveryFrame bool
	presentInterval   time.Duration
	presentNext       bool

	// Start of the present gate and the elapsed time at which the next
	// frame is presented.
	gateStart time.Time
	presentAt time.Duration
}

// Create a controller in the reset state.
func New(clock Clock, opts Options) *Controller {
	if clock == nil {
		clock = SystemClock()
	}
	if opts.PresentInterval <= 0 {
		opts.PresentInterval = DefaultPresentInterval
	}

	c := &Controller{
		logger:            log.New("accumulator"),
		clock:             clock,
		cap:               opts.Cap,
		presentEveryFrame: opts.PresentEveryFrame,
		presentInterval:   opts.PresentInterval,
	}
	c.reset()
	return c
}

// Restart discards accumulated samples. Every restart is counted, even if
// nothing visible changed.
func (c *Controller) Restart(reason string) {
	c.reset()
	c.resets++
	c.logger.Debugf("restarting accumulation: %s", reason)
}

func (c *Controller) reset() {
	c.state = Reset
	c.iteration = 0
	c.presentNext = true
	c.gateStart = c.clock.Now()
	c.presentAt = c.presentInterval
}

// SetCap changes the sample cap without discarding samples. Raising the
// cap above the current iteration resumes accumulation; lowering it stops
// further launches.
func (c *Controller) SetCap(n uint32) {
	c.cap = n
	if c.state != Reset {
		c.state = c.settledState()
	}
}

func (c *Controller) Cap() uint32 {
	return c.cap
}

// Iteration is the number of completed launches since the last restart.
// It doubles as the zero based index of the next launch.
func (c *Controller) Iteration() uint32 {
	return c.iteration
}

func (c *Controller) State() State {
	return c.state
}

// Resets returns the number of restarts since construction.
func (c *Controller) Resets() int {
	return c.resets
}

// PresentNext reports whether the next frame will be presented
// regardless of the present policy.
func (c *Controller) PresentNext() bool {
	return c.presentNext
}

// ShouldLaunch reports whether another launch is allowed.
func (c *Controller) ShouldLaunch() bool {
	return c.cap == 0 || c.iteration < c.cap
}

// LaunchCompleted records a successful launch.
func (c *Controller) LaunchCompleted() {
	c.iteration++
	c.state = c.settledState()
}

// LaunchFailed records a failed launch. The state is left unchanged so the
// next frame retries the same iteration.
func (c *Controller) LaunchFailed(err error) {
	c.logger.Errorf("launch for iteration %d failed: %v", c.iteration, err)
}

func (c *Controller) settledState() State {
	if c.cap != 0 && c.iteration >= c.cap {
		return Capped
	}
	if c.iteration == 0 {
		return Reset
	}
	return Accumulating
}

// SetPresentEveryFrame switches the present policy.
func (c *Controller) SetPresentEveryFrame(flag bool) {
	c.presentEveryFrame = flag
}

// PresentThisFrame decides whether the frame should be copied to the
// display. The first frame after a restart is always presented; after
// that only launched frames are presented, either every frame or once per
// present interval depending on the policy.
func (c *Controller) PresentThisFrame(launched bool) bool {
	if c.presentNext {
		c.presentNext = false
		return true
	}
	if !launched {
		return false
	}
	if c.presentEveryFrame {
		return true
	}

	elapsed := c.clock.Now().Sub(c.gateStart)
	if elapsed < c.presentAt {
		return false
	}

	c.presentAt = (elapsed/c.presentInterval + 1) * c.presentInterval
	return true
}

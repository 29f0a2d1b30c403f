package accum

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCapBoundary(t *testing.T) {
	c := New(&fakeClock{}, Options{})
	c.SetCap(5)

	launches := runUntilCapped(c, 100)
	if launches != 5 {
		t.Fatalf("expected 5 launches before capping; got %d", launches)
	}
	if c.State() != Capped {
		t.Fatalf("expected state to be capped; got %s", c.State())
	}

	c.SetCap(8)
	if c.State() != Accumulating {
		t.Fatalf("expected raising the cap to resume accumulation; got %s", c.State())
	}

	launches = runUntilCapped(c, 100)
	if launches != 3 {
		t.Fatalf("expected 3 more launches; got %d", launches)
	}
	if c.Iteration() != 8 {
		t.Fatalf("expected iteration 8; got %d", c.Iteration())
	}
	if c.Resets() != 0 {
		t.Fatalf("expected no restarts; got %d", c.Resets())
	}
}

func TestLowerCapKeepsSamples(t *testing.T) {
	c := New(&fakeClock{}, Options{})
	for i := 0; i < 6; i++ {
		c.LaunchCompleted()
	}

	c.SetCap(3)
	if c.State() != Capped || c.ShouldLaunch() {
		t.Fatalf("expected lowering the cap to stop launches; got state %s", c.State())
	}
	if c.Iteration() != 6 {
		t.Fatalf("expected accumulated samples to be kept; got iteration %d", c.Iteration())
	}

	c.SetCap(0)
	if c.State() != Accumulating || !c.ShouldLaunch() {
		t.Fatalf("expected an unbounded cap to resume accumulation; got state %s", c.State())
	}
}

func TestRestart(t *testing.T) {
	c := New(&fakeClock{}, Options{Cap: 2})
	if c.State() != Reset || !c.PresentNext() {
		t.Fatal("expected a new controller to start in the reset state with a pending present")
	}

	c.LaunchCompleted()
	c.PresentThisFrame(true)
	c.LaunchCompleted()
	if c.State() != Capped {
		t.Fatalf("expected state to be capped; got %s", c.State())
	}

	c.Restart("camera moved")
	if c.State() != Reset || c.Iteration() != 0 || !c.PresentNext() {
		t.Fatalf("expected restart to reset iteration and present flag; got %s, %d, %t", c.State(), c.Iteration(), c.PresentNext())
	}
	if !c.ShouldLaunch() {
		t.Fatal("expected launches to be allowed after a restart")
	}

	c.Restart("material edit")
	if c.Resets() != 2 {
		t.Fatalf("expected 2 restarts; got %d", c.Resets())
	}
}

func TestLaunchFailedLeavesState(t *testing.T) {
	c := New(&fakeClock{}, Options{})
	c.LaunchCompleted()
	c.LaunchCompleted()

	c.LaunchFailed(errors.New("boom"))
	if c.Iteration() != 2 || c.State() != Accumulating {
		t.Fatalf("expected state to be unchanged; got %s at iteration %d", c.State(), c.Iteration())
	}
}

func TestPresentGate(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	c := New(clock, Options{})

	// The first frame after a reset is always presented.
	if !c.PresentThisFrame(true) {
		t.Fatal("expected first frame to be presented")
	}

	clock.Advance(300 * time.Millisecond)
	if c.PresentThisFrame(true) {
		t.Fatal("expected frame before the first second to be skipped")
	}

	clock.Advance(700 * time.Millisecond)
	if !c.PresentThisFrame(true) {
		t.Fatal("expected frame at one second to be presented")
	}
	if c.PresentThisFrame(true) {
		t.Fatal("expected only one frame per second to be presented")
	}

	clock.Advance(2500 * time.Millisecond)
	if !c.PresentThisFrame(true) {
		t.Fatal("expected frame after a long pause to be presented")
	}
	clock.Advance(400 * time.Millisecond)
	if c.PresentThisFrame(true) {
		t.Fatal("expected gate to realign to the next whole second")
	}
	clock.Advance(100 * time.Millisecond)
	if !c.PresentThisFrame(true) {
		t.Fatal("expected frame at four seconds to be presented")
	}

	// A restart presents the very next frame and restarts the gate.
	c.Restart("resize")
	if !c.PresentThisFrame(false) {
		t.Fatal("expected frame after a restart to be presented")
	}
	clock.Advance(999 * time.Millisecond)
	if c.PresentThisFrame(true) {
		t.Fatal("expected gate to restart after a reset")
	}
}

func TestPresentEveryFrame(t *testing.T) {
	c := New(&fakeClock{}, Options{PresentEveryFrame: true})
	for i := 0; i < 5; i++ {
		if !c.PresentThisFrame(true) {
			t.Fatalf("expected frame %d to be presented", i)
		}
	}
	if c.PresentThisFrame(false) {
		t.Fatal("expected frames without a launch to be skipped")
	}

	c.SetPresentEveryFrame(false)
	if c.PresentThisFrame(true) {
		t.Fatal("expected switching the policy to enable the gate")
	}
}

func runUntilCapped(c *Controller, limit int) int {
	launches := 0
	for launches < limit && c.ShouldLaunch() {
		c.LaunchCompleted()
		launches++
	}
	return launches
}

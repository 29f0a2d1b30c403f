package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/surajsubudhi10/PistonOptix/fault"
)

// A PixelFunc is invoked once per launch index. Invocations for different
// pixels may run concurrently and in any order.
type PixelFunc func(x, y int) error

// Execute fn for every pixel of a w x h launch and block until all
// invocations complete. A 0 x 0 launch validates the device without running
// any work. The first pixel error aborts the launch.
func (d *Device) Launch(w, h int, fn PixelFunc) (time.Duration, error) {
	if !d.initialized {
		return 0, fmt.Errorf("device (%s): %v: %w", d.Name, ErrNotInitialized, fault.ErrLaunch)
	}
	if w < 0 || h < 0 {
		return 0, fmt.Errorf("device (%s): invalid launch dimensions %dx%d: %w", d.Name, w, h, fault.ErrLaunch)
	}
	if d.mapped != 0 {
		return 0, fmt.Errorf("device (%s): %d buffer(s) still mapped by the host: %w", d.Name, d.mapped, fault.ErrLaunch)
	}

	tick := time.Now()
	if w == 0 || h == 0 {
		return time.Since(tick), nil
	}

	workers := d.workers
	if workers > h {
		workers = h
	}
	rowsPerWorker := (h + workers - 1) / workers

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		abort    = make(chan struct{})
	)

	for rowStart := 0; rowStart < h; rowStart += rowsPerWorker {
		rowEnd := rowStart + rowsPerWorker
		if rowEnd > h {
			rowEnd = h
		}

		wg.Add(1)
		go func(rowStart, rowEnd int) {
			defer wg.Done()
			for y := rowStart; y < rowEnd; y++ {
				select {
				case <-abort:
					return
				default:
				}

				for x := 0; x < w; x++ {
					if err := fn(x, y); err != nil {
						errOnce.Do(func() {
							firstErr = fmt.Errorf("device (%s): launch failed at pixel (%d, %d): %v: %w", d.Name, x, y, err, fault.ErrLaunch)
							close(abort)
						})
						return
					}
				}
			}
		}(rowStart, rowEnd)
	}

	wg.Wait()

	if firstErr != nil {
		return 0, firstErr
	}

	return time.Since(tick), nil
}

// Package device implements the context object that owns every buffer,
// program and variable used by the tracer. A Device is created by the
// renderer, passed explicitly to each component and released on Close.
//
// Buffers live in host memory and launches execute on a pool of goroutines,
// one horizontal stripe of the frame per worker.
package device

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
)

// An Option configures a device.
type Option func(*Device)

// Limit the total number of bytes that may be allocated by device buffers.
func WithMemoryLimit(bytes int) Option {
	return func(d *Device) {
		d.memLimit = bytes
	}
}

// Set the number of goroutines used for launches. Values <= 0 select
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(d *Device) {
		d.workers = n
	}
}

type Device struct {
	Name string

	logger log.Logger

	// Memory accounting.
	memLimit  int
	allocated int

	workers int

	initialized bool

	// Live buffers.
	buffers map[*Buffer]struct{}

	// Number of buffers currently mapped by the host.
	mapped int

	// Registered programs; index 0 is reserved for InvalidProgram.
	programs []*Program

	// Context-global variables read by launches.
	variables map[string]interface{}
}

// Create a new device.
func New(name string, opts ...Option) *Device {
	d := &Device{
		Name:      name,
		logger:    log.New(fmt.Sprintf("device (%s)", name)),
		buffers:   make(map[*Buffer]struct{}),
		programs:  []*Program{nil},
		variables: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.workers <= 0 {
		d.workers = runtime.NumCPU()
	}

	return d
}

// Initialize device.
func (d *Device) Init() error {
	if d.initialized {
		return nil
	}

	d.initialized = true
	d.logger.Infof("initialized device with %d workers", d.workers)
	return nil
}

// Release all buffers, programs and variables. It is safe to call Close
// multiple times.
func (d *Device) Close() {
	if !d.initialized {
		return
	}

	for buf := range d.buffers {
		if buf.interop != nil {
			if err := buf.UnregisterInterop(); err != nil {
				d.logger.Warningf("could not detach interop consumer from buffer %s: %v", buf.name, err)
			}
		}
		buf.Release()
	}

	d.programs = []*Program{nil}
	d.variables = make(map[string]interface{})
	d.initialized = false
	d.logger.Info("device closed")
}

// Create an empty buffer.
func (d *Device) Buffer(name string) *Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}

// Get the number of bytes currently allocated by buffers.
func (d *Device) Allocated() int {
	return d.allocated
}

// Get the number of live buffers.
func (d *Device) LiveBuffers() int {
	return len(d.buffers)
}

// Get the number of launch workers.
func (d *Device) Workers() int {
	return d.workers
}

// Set a context-global variable.
func (d *Device) SetVariable(name string, value interface{}) {
	d.variables[name] = value
}

// Get a context-global variable.
func (d *Device) Variable(name string) (interface{}, bool) {
	v, ok := d.variables[name]
	return v, ok
}

// Validate ensures that the device is initialized and that all the named
// variables have been declared.
func (d *Device) Validate(required ...string) error {
	if !d.initialized {
		return fmt.Errorf("device (%s): %w", d.Name, ErrNotInitialized)
	}

	var missing []string
	for _, name := range required {
		if _, ok := d.variables[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) != 0 {
		sort.Strings(missing)
		return fmt.Errorf("device (%s): undeclared variables %s: %w", d.Name, strings.Join(missing, ", "), fault.ErrConsistency)
	}

	return nil
}

func (d *Device) reserve(buf *Buffer, delta int) error {
	if d.memLimit > 0 && d.allocated+delta > d.memLimit {
		return fmt.Errorf(
			"device (%s): could not allocate %d bytes for buffer %s; %d of %d bytes in use: %w",
			d.Name, delta, buf.name, d.allocated, d.memLimit, fault.ErrResource,
		)
	}

	d.allocated += delta
	return nil
}

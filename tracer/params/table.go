package params

import (
	"fmt"
	"unsafe"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
)

// table mirrors a list of host items into a packed device buffer. The
// buffer index of every item equals its index in the host list.
type table[T any, P any] struct {
	name       string
	bufferName string
	logger     log.Logger
	dev        *device.Device
	pack       func(T) P

	items  []T
	buffer *device.Buffer

	// Invoked after the buffer contents change.
	onChange func(count int)
}

func newTable[T any, P any](dev *device.Device, name, bufferName string, pack func(T) P) *table[T, P] {
	return &table[T, P]{
		name:       name,
		bufferName: bufferName,
		logger:     log.New(name),
		dev:        dev,
		pack:       pack,
	}
}

// Release the current buffer (if any) and allocate a new one sized to
// exactly len(items) packed elements. Empty lists still get a buffer.
func (t *table[T, P]) rebuild(items []T) (*device.Buffer, error) {
	packed := t.flatten(items)

	buf := t.dev.Buffer(t.bufferName)
	var err error
	if len(packed) == 0 {
		var zero P
		err = buf.Allocate(int(unsafe.Sizeof(zero)), 0)
	} else {
		err = buf.AllocateAndWriteData(packed)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: rebuild with %d items: %w", t.name, len(items), err)
	}

	if t.buffer != nil {
		t.buffer.Release()
	}
	t.buffer = buf
	t.items = append([]T(nil), items...)
	t.logger.Infof("rebuilt %s with %d items (%d bytes)", t.bufferName, len(items), buf.Size())
	t.changed()
	return buf, nil
}

// Re-flatten items into the existing buffer. The item count must match.
func (t *table[T, P]) update(items []T) error {
	if t.buffer == nil {
		return fmt.Errorf("%s: %w", t.name, ErrNotBuilt)
	}
	if len(items) != len(t.items) {
		return fmt.Errorf("%s: update with %d items; buffer holds %d: %w", t.name, len(items), len(t.items), ErrCountChanged)
	}

	if len(items) > 0 {
		if err := t.buffer.WriteData(t.flatten(items), 0); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}

	copy(t.items, items)
	t.changed()
	return nil
}

// Replace a single item and re-flatten it.
func (t *table[T, P]) set(index int, item T) error {
	if t.buffer == nil {
		return fmt.Errorf("%s: %w", t.name, ErrNotBuilt)
	}
	if index < 0 || index >= len(t.items) {
		return fmt.Errorf("%s: index %d (count %d): %w", t.name, index, len(t.items), ErrOutOfRange)
	}

	packed := []P{t.pack(item)}
	if err := t.buffer.WriteData(packed, index*int(unsafe.Sizeof(packed[0]))); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}

	t.items[index] = item
	t.changed()
	return nil
}

// Check that the buffer exists and matches the host item count.
func (t *table[T, P]) verify() error {
	if t.buffer == nil || !t.buffer.Allocated() {
		return fmt.Errorf("%s: %s is not allocated but %d items are declared: %w", t.name, t.bufferName, len(t.items), fault.ErrConsistency)
	}
	if t.buffer.Count() != len(t.items) {
		return fmt.Errorf("%s: %s holds %d elements but %d items are declared: %w", t.name, t.bufferName, t.buffer.Count(), len(t.items), fault.ErrConsistency)
	}
	return nil
}

func (t *table[T, P]) release() {
	if t.buffer != nil {
		t.buffer.Release()
		t.buffer = nil
	}
	t.items = nil
}

func (t *table[T, P]) flatten(items []T) []P {
	packed := make([]P, len(items))
	for idx, item := range items {
		packed[idx] = t.pack(item)
	}
	return packed
}

func (t *table[T, P]) changed() {
	if t.onChange != nil {
		t.onChange(len(t.items))
	}
}

package device

import (
	"fmt"
	"reflect"
	"unsafe"
)

// An InteropConsumer is an external reader of a buffer's contents such as a
// display texture. Consumers must be detached before the buffer is resized.
type InteropConsumer interface {
	Attach(buf *Buffer) error
	Detach(buf *Buffer) error
}

type Buffer struct {
	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Backing store and layout.
	data      []byte
	elemSize  int
	count     int
	allocated bool

	// Set while the host holds a mapping.
	mapped bool

	interop InteropConsumer
}

// Get buffer name.
func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size in bytes.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Get the size of a single element.
func (b *Buffer) ElementSize() int {
	return b.elemSize
}

// Get the number of elements.
func (b *Buffer) Count() int {
	return b.count
}

// Check whether the buffer is backed by device memory. Zero-element buffers
// count as allocated.
func (b *Buffer) Allocated() bool {
	return b.allocated
}

// Check whether the buffer is currently mapped by the host.
func (b *Buffer) Mapped() bool {
	return b.mapped
}

// Allocate a buffer for count elements of elemSize bytes each. A count of
// zero creates a valid, empty buffer. Any previous contents are discarded.
func (b *Buffer) Allocate(elemSize, count int) error {
	if elemSize <= 0 || count < 0 {
		return fmt.Errorf("device (%s): invalid layout for buffer %s: %d elements of %d bytes", b.device.Name, b.name, count, elemSize)
	}
	if err := b.checkMutable(); err != nil {
		return err
	}

	size := elemSize * count
	if err := b.device.reserve(b, size-len(b.data)); err != nil {
		return err
	}

	b.data = alloc(size)
	b.elemSize = elemSize
	b.count = count
	b.allocated = true
	b.device.buffers[b] = struct{}{}

	return nil
}

// Allocate a buffer with enough capacity to fit the given slice and copy
// the slice contents into it. Element size is inferred from the slice type.
func (b *Buffer) AllocateAndWriteData(data interface{}) error {
	elemSize, count, err := sliceLayout(data)
	if err != nil {
		return fmt.Errorf("device (%s): buffer %s: %v", b.device.Name, b.name, err)
	}

	if err = b.Allocate(elemSize, count); err != nil {
		return err
	}

	return b.WriteData(data, 0)
}

// Resize the buffer to hold count elements. The contents are discarded.
// Resizing fails while an interop consumer is registered.
func (b *Buffer) Resize(count int) error {
	if !b.allocated {
		return fmt.Errorf("device (%s): could not resize buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}

	return b.Allocate(b.elemSize, count)
}

// Map the buffer for host access. Launches are rejected while any buffer
// is mapped.
func (b *Buffer) Map() ([]byte, error) {
	if !b.allocated {
		return nil, fmt.Errorf("device (%s): could not map buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}
	if b.mapped {
		return nil, fmt.Errorf("device (%s): could not map buffer %s: %w", b.device.Name, b.name, ErrBufferMapped)
	}

	b.mapped = true
	b.device.mapped++
	return b.data, nil
}

// Release a host mapping.
func (b *Buffer) Unmap() error {
	if !b.mapped {
		return fmt.Errorf("device (%s): could not unmap buffer %s: %w", b.device.Name, b.name, ErrBufferNotMapped)
	}

	b.mapped = false
	b.device.mapped--
	return nil
}

// Write the contents of a slice to the buffer starting at the given byte
// offset. The behavior of this method is undefined if the slice element type
// does not use contiguous memory.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	if !b.allocated {
		return fmt.Errorf("device (%s): could not write to buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}

	dataPtr, dataLen, err := getSliceData(data)
	if err != nil {
		return fmt.Errorf("device (%s): buffer %s: %v", b.device.Name, b.name, err)
	}

	if offset < 0 || offset+dataLen > len(b.data) {
		return fmt.Errorf("device (%s): insufficient buffer space (%d) in %s for copying data of length %d at offset %d", b.device.Name, len(b.data), b.name, dataLen, offset)
	}

	if dataLen != 0 {
		copy(b.data[offset:offset+dataLen], unsafe.Slice((*byte)(dataPtr), dataLen))
	}

	return nil
}

// Read data from the buffer into the supplied host slice. If size is <= 0
// then ReadData will read the entire buffer. Both src and dst offsets are
// specified in bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if !b.allocated {
		return fmt.Errorf("device (%s): could not read from buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}

	if size <= 0 {
		size = len(b.data) - srcOffset
	}

	dataPtr, dataLen, err := getSliceData(hostBuffer)
	if err != nil {
		return fmt.Errorf("device (%s): buffer %s: %v", b.device.Name, b.name, err)
	}

	if srcOffset < 0 || srcOffset+size > len(b.data) || dstOffset < 0 || dstOffset+size > dataLen {
		return fmt.Errorf("device (%s): out of bounds read of %d bytes from %s (src offset %d, dst offset %d)", b.device.Name, size, b.name, srcOffset, dstOffset)
	}

	if size != 0 {
		copy(unsafe.Slice((*byte)(unsafe.Add(dataPtr, dstOffset)), size), b.data[srcOffset:srcOffset+size])
	}

	return nil
}

// Get a float32 view of the buffer contents. The view is invalidated when
// the buffer is resized or released.
func (b *Buffer) Float32s() []float32 {
	if len(b.data) < 4 {
		return nil
	}

	return unsafe.Slice((*float32)(unsafe.Pointer(&b.data[0])), len(b.data)/4)
}

// Get a read-only view of the raw buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Attach an interop consumer.
func (b *Buffer) RegisterInterop(consumer InteropConsumer) error {
	if !b.allocated {
		return fmt.Errorf("device (%s): could not register interop for buffer %s: %w", b.device.Name, b.name, ErrBufferNotAllocated)
	}
	if b.interop != nil {
		return fmt.Errorf("device (%s): could not register interop for buffer %s: %w", b.device.Name, b.name, ErrInteropRegistered)
	}

	if err := consumer.Attach(b); err != nil {
		return fmt.Errorf("device (%s): interop consumer rejected buffer %s: %v", b.device.Name, b.name, err)
	}

	b.interop = consumer
	return nil
}

// Detach the registered interop consumer, if any.
func (b *Buffer) UnregisterInterop() error {
	if b.interop == nil {
		return nil
	}

	consumer := b.interop
	b.interop = nil
	if err := consumer.Detach(b); err != nil {
		return fmt.Errorf("device (%s): interop consumer failed to detach from buffer %s: %v", b.device.Name, b.name, err)
	}

	return nil
}

// Get the registered interop consumer.
func (b *Buffer) Interop() InteropConsumer {
	return b.interop
}

// Release buffer.
func (b *Buffer) Release() {
	if !b.allocated {
		return
	}

	if b.mapped {
		b.mapped = false
		b.device.mapped--
	}

	b.device.allocated -= len(b.data)
	delete(b.device.buffers, b)
	b.data = nil
	b.count = 0
	b.allocated = false
}

func (b *Buffer) checkMutable() error {
	if !b.device.initialized {
		return fmt.Errorf("device (%s): could not allocate buffer %s: %w", b.device.Name, b.name, ErrNotInitialized)
	}
	if b.mapped {
		return fmt.Errorf("device (%s): could not reallocate buffer %s: %w", b.device.Name, b.name, ErrBufferMapped)
	}
	if b.interop != nil {
		return fmt.Errorf("device (%s): could not reallocate buffer %s: %w", b.device.Name, b.name, ErrInteropRegistered)
	}

	return nil
}

// Allocate an 8-byte aligned backing store.
func alloc(size int) []byte {
	if size == 0 {
		return []byte{}
	}

	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
}

// Given an interface{} containing a slice return its element size and length.
func sliceLayout(data interface{}) (elemSize, count int, err error) {
	reflVal := reflect.ValueOf(data)
	if reflVal.Kind() != reflect.Slice {
		return 0, 0, fmt.Errorf("expected a slice; got %s", reflVal.Kind())
	}

	return int(reflVal.Type().Elem().Size()), reflVal.Len(), nil
}

// Given an interface{} containing a slice return a pointer to its data and
// its length in bytes. Empty slices yield a nil pointer.
func getSliceData(data interface{}) (unsafe.Pointer, int, error) {
	reflVal := reflect.ValueOf(data)
	if reflVal.Kind() != reflect.Slice {
		return nil, 0, fmt.Errorf("expected a slice; got %s", reflVal.Kind())
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		return nil, 0, nil
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		sliceElemCount * int(reflVal.Type().Elem().Size()), nil
}

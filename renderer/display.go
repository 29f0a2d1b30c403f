package renderer

import (
	"fmt"
	"sync"

	"github.com/surajsubudhi10/PistonOptix/tracer/device"
)

// A Display receives presented frames as w*h RGBA32F pixels with row 0 at
// the top of the image.
type Display interface {
	Present(pix []float32, w, h int) error
}

// TextureDisplay is an in-memory display texture. It can be attached to
// the output buffer as an interop consumer; Present always copies the frame
// it is given into the texture.
type TextureDisplay struct {
	sync.Mutex

	pix  []float32
	w, h int

	attached *device.Buffer
	attaches int
	detaches int
	presents int
}

// Create an empty display texture.
func NewTextureDisplay() *TextureDisplay {
	return &TextureDisplay{}
}

// Attach implements device.InteropConsumer.
func (d *TextureDisplay) Attach(buf *device.Buffer) error {
	d.Lock()
	defer d.Unlock()

	if d.attached != nil {
		return fmt.Errorf("texture display: already attached to %s", d.attached.Name())
	}
	d.attached = buf
	d.attaches++
	return nil
}

// Detach implements device.InteropConsumer.
func (d *TextureDisplay) Detach(buf *device.Buffer) error {
	d.Lock()
	defer d.Unlock()

	if d.attached != buf {
		return fmt.Errorf("texture display: not attached to %s", buf.Name())
	}
	d.attached = nil
	d.detaches++
	return nil
}

// Present copies the frame into the texture.
func (d *TextureDisplay) Present(pix []float32, w, h int) error {
	d.Lock()
	defer d.Unlock()

	if len(pix) != w*h*4 {
		return fmt.Errorf("texture display: expected %d values for a %dx%d frame; got %d", w*h*4, w, h, len(pix))
	}
	if cap(d.pix) < len(pix) {
		d.pix = make([]float32, len(pix))
	}
	d.pix = d.pix[:len(pix)]
	copy(d.pix, pix)
	d.w, d.h = w, h
	d.presents++
	return nil
}

// Get a copy of the texture contents and its dimensions.
func (d *TextureDisplay) Texture() ([]float32, int, int) {
	d.Lock()
	defer d.Unlock()
	return append([]float32(nil), d.pix...), d.w, d.h
}

// Get the number of presented frames.
func (d *TextureDisplay) Presents() int {
	d.Lock()
	defer d.Unlock()
	return d.presents
}

// Get the number of interop attach and detach calls.
func (d *TextureDisplay) InteropEvents() (attaches, detaches int) {
	d.Lock()
	defer d.Unlock()
	return d.attaches, d.detaches
}

// Check whether the display is attached to a buffer.
func (d *TextureDisplay) Attached() bool {
	d.Lock()
	defer d.Unlock()
	return d.attached != nil
}

package kernel

import "github.com/surajsubudhi10/PistonOptix/types"

// Tea scrambles two values with 8 rounds of the tiny encryption algorithm.
// It is used to derive a per pixel, per iteration seed.
func Tea(val0, val1 uint32) uint32 {
	v0, v1 := val0, val1
	var s0 uint32

	for n := 0; n < 8; n++ {
		s0 += 0x9e3779b9
		v0 += ((v1 << 4) + 0xa341316c) ^ (v1 + s0) ^ ((v1 >> 5) + 0xc8013ea4)
		v1 += ((v0 << 4) + 0xad90777d) ^ (v0 + s0) ^ ((v0 >> 5) + 0x7e95761e)
	}
	return v0
}

// RNG is a linear congruential generator.
type RNG struct {
	state uint32
}

// Create a generator for a launch index and iteration.
func NewRNG(index, iteration uint32) *RNG {
	return &RNG{state: Tea(index, iteration)}
}

// Float returns a sample in [0, 1) built from the lower 24 bits.
func (r *RNG) Float() float32 {
	r.state = r.state*1664525 + 1013904223
	return float32(r.state&0x00ffffff) / float32(0x01000000)
}

// Float2 returns a 2D sample in the unit square.
func (r *RNG) Float2() types.Vec2 {
	x := r.Float()
	return types.Vec2{x, r.Float()}
}

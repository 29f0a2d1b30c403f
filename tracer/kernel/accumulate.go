package kernel

import "github.com/surajsubudhi10/PistonOptix/types"

// Accumulate folds a sample into an RGBA pixel. Iteration 0 overwrites the
// pixel; iteration n blends with weight 1/(n+1) so that after N launches
// the pixel holds the arithmetic mean of the N samples.
func Accumulate(pixel []float32, sample types.Vec4, iteration uint32) {
	if iteration == 0 {
		copy(pixel, sample[:])
		return
	}

	w := 1 / float32(iteration+1)
	for c := 0; c < 4; c++ {
		pixel[c] += (sample[c] - pixel[c]) * w
	}
}

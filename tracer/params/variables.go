package params

// Names of the device variables and buffers read by the trace kernel.
const (
	VarIterationIndex  = "sysIterationIndex"
	VarSceneEpsilon    = "sysSceneEpsilon"
	VarPathLengths     = "sysPathLengths"
	VarNumberOfLights  = "sysNumberOfLights"
	VarCameraPosition  = "sysCameraPosition"
	VarCameraU         = "sysCameraU"
	VarCameraV         = "sysCameraV"
	VarCameraW         = "sysCameraW"
	VarTopObject       = "sysTopObject"
	MaterialBufferName = "sysMaterialParameters"
	LightBufferName    = "sysLightParameters"
	OutputBufferName   = "sysOutputBuffer"
)

// PathLengths bounds the number of path segments traced per sample.
// Russian roulette starts after Min segments; paths never exceed Max.
type PathLengths struct {
	Min uint32
	Max uint32
}

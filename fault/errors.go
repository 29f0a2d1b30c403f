// Package fault defines the error taxonomy shared by the renderer components.
// Component errors wrap one of the sentinel values below so callers can
// classify them with errors.Is.
package fault

import "errors"

var (
	// Malformed mesh or node references detected while assembling a scene.
	ErrBuildPrecondition = errors.New("build precondition failed")

	// Device allocation or acceleration structure build failure.
	ErrResource = errors.New("resource failure")

	// Missing dispatch entries or parameter buffers that disagree with
	// their declared element count.
	ErrConsistency = errors.New("consistency violation")

	// A launch failed after the scene was otherwise valid.
	ErrLaunch = errors.New("launch failure")
)

// Kind identifies an error class.
type Kind int

const (
	Unknown Kind = iota
	BuildPrecondition
	ResourceFailure
	ConsistencyViolation
	RuntimeLaunchFailure
)

func (k Kind) String() string {
	switch k {
	case BuildPrecondition:
		return "BuildPrecondition"
	case ResourceFailure:
		return "ResourceFailure"
	case ConsistencyViolation:
		return "ConsistencyViolation"
	case RuntimeLaunchFailure:
		return "RuntimeLaunchFailure"
	}

	return "Unknown"
}

// Recoverable returns true for errors that only affect a single frame.
func (k Kind) Recoverable() bool {
	return k == RuntimeLaunchFailure
}

// Classify maps an error to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, ErrBuildPrecondition):
		return BuildPrecondition
	case errors.Is(err, ErrResource):
		return ResourceFailure
	case errors.Is(err, ErrConsistency):
		return ConsistencyViolation
	case errors.Is(err, ErrLaunch):
		return RuntimeLaunchFailure
	}

	return Unknown
}

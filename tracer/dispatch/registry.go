// Package dispatch maintains the enum indexed callable tables that let a
// single trace kernel select shading and light sampling behavior by
// ordinal.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/tracer/params"
	"github.com/surajsubudhi10/PistonOptix/types"
)

var (
	ErrSealed         = errors.New("dispatch tables are installed and can no longer be modified")
	ErrInvalidOrdinal = errors.New("ordinal out of range for role")
	ErrInvalidProgram = errors.New("invalid program id")
)

// Role identifies a callable table.
type Role uint8

const (
	BrdfSample Role = iota
	BrdfEval
	BrdfPdf
	LightSample
	NumRoles
)

func (r Role) String() string {
	switch r {
	case BrdfSample:
		return "sysBRDFSample"
	case BrdfEval:
		return "sysBRDFEval"
	case BrdfPdf:
		return "sysBRDFPdf"
	case LightSample:
		return "sysLightSample"
	}

	panic(fmt.Sprintf("dispatch: unsupported role %d", uint8(r)))
}

// Cardinality returns the number of ordinals in the role's type space.
func (r Role) Cardinality() int {
	switch r {
	case BrdfSample, BrdfEval, BrdfPdf:
		return int(scene.NumBrdfTypes)
	case LightSample:
		return int(scene.NumLightTypes)
	}

	panic(fmt.Sprintf("dispatch: unsupported role %d", uint8(r)))
}

// Registry collects callable ids per role prior to installation.
type Registry struct {
	logger  log.Logger
	entries [NumRoles][]device.ProgramID
	sealed  bool
}

// Create an empty registry.
func NewRegistry() *Registry {
	reg := &Registry{
		logger: log.New("dispatch registry"),
	}
	for role := Role(0); role < NumRoles; role++ {
		reg.entries[role] = make([]device.ProgramID, role.Cardinality())
	}
	return reg
}

// Register the callable for a role ordinal. Registering the same ordinal
// again before installation replaces the previous entry.
func (reg *Registry) Register(role Role, ordinal int, id device.ProgramID) error {
	if reg.sealed {
		return fmt.Errorf("dispatch registry: register %s[%d]: %w", role, ordinal, ErrSealed)
	}
	if role >= NumRoles {
		return fmt.Errorf("dispatch registry: unknown role %d: %w", uint8(role), ErrInvalidOrdinal)
	}
	if ordinal < 0 || ordinal >= role.Cardinality() {
		return fmt.Errorf("dispatch registry: register %s[%d] (cardinality %d): %w", role, ordinal, role.Cardinality(), ErrInvalidOrdinal)
	}
	if id == device.InvalidProgram {
		return fmt.Errorf("dispatch registry: register %s[%d]: %w", role, ordinal, ErrInvalidProgram)
	}

	reg.entries[role][ordinal] = id
	return nil
}

// Check whether the tables have been installed.
func (reg *Registry) Sealed() bool {
	return reg.sealed
}

// Gaps lists every unregistered role ordinal.
func (reg *Registry) Gaps() []string {
	var gaps []string
	for role := Role(0); role < NumRoles; role++ {
		for ordinal, id := range reg.entries[role] {
			if id == device.InvalidProgram {
				gaps = append(gaps, fmt.Sprintf("%s[%d]", role, ordinal))
			}
		}
	}
	return gaps
}

// Install validates that every ordinal of every role has a callable,
// uploads one table buffer per role and seals the registry. Once
// installed the tables are immutable; supporting new types requires a new
// registry.
func (reg *Registry) Install(dev *device.Device) (*Tables, error) {
	if reg.sealed {
		return nil, fmt.Errorf("dispatch registry: install: %w", ErrSealed)
	}

	if gaps := reg.Gaps(); len(gaps) != 0 {
		return nil, fmt.Errorf("dispatch registry: missing callables for %s: %w", strings.Join(gaps, ", "), fault.ErrConsistency)
	}

	// Every id must resolve to a callable of the role's signature now
	// rather than at trace time.
	tables := &Tables{dev: dev}
	for role := Role(0); role < NumRoles; role++ {
		for ordinal, id := range reg.entries[role] {
			prog, err := dev.Program(id)
			if err != nil {
				return nil, fmt.Errorf("dispatch registry: %s[%d]: %v: %w", role, ordinal, err, fault.ErrConsistency)
			}
			if err = tables.bind(role, prog.Fn); err != nil {
				return nil, fmt.Errorf("dispatch registry: %s[%d] (program %s): %v: %w", role, ordinal, prog.Name, err, fault.ErrConsistency)
			}
			reg.logger.Debugf("%s[%d] -> %s (%d)", role, ordinal, prog.Name, id)
		}
	}

	for role := Role(0); role < NumRoles; role++ {
		buf := dev.Buffer(role.String())
		if err := buf.AllocateAndWriteData(reg.entries[role]); err != nil {
			tables.Release()
			return nil, fmt.Errorf("dispatch registry: install %s: %w", role, err)
		}
		tables.buffers[role] = buf
		tables.ids[role] = append([]device.ProgramID(nil), reg.entries[role]...)
	}

	reg.sealed = true
	reg.logger.Noticef("installed %d dispatch tables", NumRoles)
	return tables, nil
}

// Tables are the installed, read-only dispatch tables.
type Tables struct {
	dev     *device.Device
	buffers [NumRoles]*device.Buffer
	ids     [NumRoles][]device.ProgramID

	// Resolved callables, indexed by ordinal.
	brdfSample  []BrdfSampleFunc
	brdfEval    []BrdfEvalFunc
	brdfPdf     []BrdfPdfFunc
	lightSample []LightSampleFunc
}

// Append fn to the role's callable list. Both the named callable types and
// plain funcs with the same signature are accepted.
func (t *Tables) bind(role Role, fn interface{}) error {
	switch role {
	case BrdfSample:
		switch f := fn.(type) {
		case BrdfSampleFunc:
			t.brdfSample = append(t.brdfSample, f)
		case func(*Surface, types.Vec2) (types.Vec3, bool):
			t.brdfSample = append(t.brdfSample, f)
		default:
			return fmt.Errorf("callable has type %T; expected %T", fn, BrdfSampleFunc(nil))
		}
	case BrdfEval:
		switch f := fn.(type) {
		case BrdfEvalFunc:
			t.brdfEval = append(t.brdfEval, f)
		case func(*Surface, types.Vec3) types.Vec3:
			t.brdfEval = append(t.brdfEval, f)
		default:
			return fmt.Errorf("callable has type %T; expected %T", fn, BrdfEvalFunc(nil))
		}
	case BrdfPdf:
		switch f := fn.(type) {
		case BrdfPdfFunc:
			t.brdfPdf = append(t.brdfPdf, f)
		case func(*Surface, types.Vec3) float32:
			t.brdfPdf = append(t.brdfPdf, f)
		default:
			return fmt.Errorf("callable has type %T; expected %T", fn, BrdfPdfFunc(nil))
		}
	case LightSample:
		switch f := fn.(type) {
		case LightSampleFunc:
			t.lightSample = append(t.lightSample, f)
		case func(*params.PackedLight, types.Vec3, types.Vec2) LightRecord:
			t.lightSample = append(t.lightSample, f)
		default:
			return fmt.Errorf("callable has type %T; expected %T", fn, LightSampleFunc(nil))
		}
	default:
		return fmt.Errorf("unknown role %d", uint8(role))
	}
	return nil
}

// Lookup returns the callable id for a role ordinal or InvalidProgram if
// the ordinal is out of range.
func (t *Tables) Lookup(role Role, ordinal int) device.ProgramID {
	if role >= NumRoles || ordinal < 0 || ordinal >= len(t.ids[role]) {
		return device.InvalidProgram
	}
	return t.ids[role][ordinal]
}

// Buffer returns the device buffer backing a role's table.
func (t *Tables) Buffer(role Role) *device.Buffer {
	return t.buffers[role]
}

// Len returns the number of entries in a role's table.
func (t *Tables) Len(role Role) int {
	return len(t.ids[role])
}

// Release the table buffers.
func (t *Tables) Release() {
	for role, buf := range t.buffers {
		if buf != nil {
			buf.Release()
			t.buffers[role] = nil
		}
	}
}

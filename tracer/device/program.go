package device

import "fmt"

// ProgramID is an opaque handle to a program registered with a device. The
// zero value never refers to a valid program.
type ProgramID int32

const InvalidProgram ProgramID = 0

// A Program wraps a callable that launches can invoke indirectly through
// its id.
type Program struct {
	ID   ProgramID
	Name string

	// The callable. Its signature is a contract between the program's
	// creator and the code that invokes it.
	Fn interface{}
}

// Register a callable and return its id.
func (d *Device) CreateProgram(name string, fn interface{}) (ProgramID, error) {
	if !d.initialized {
		return InvalidProgram, fmt.Errorf("device (%s): could not create program %s: %w", d.Name, name, ErrNotInitialized)
	}
	if fn == nil {
		return InvalidProgram, fmt.Errorf("device (%s): program %s has no callable", d.Name, name)
	}

	id := ProgramID(len(d.programs))
	d.programs = append(d.programs, &Program{ID: id, Name: name, Fn: fn})
	d.logger.Debugf("created program %s with id %d", name, id)

	return id, nil
}

// Lookup program by id.
func (d *Device) Program(id ProgramID) (*Program, error) {
	if id <= InvalidProgram || int(id) >= len(d.programs) {
		return nil, fmt.Errorf("device (%s): program id %d: %w", d.Name, id, ErrUnknownProgram)
	}

	return d.programs[id], nil
}

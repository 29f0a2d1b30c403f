package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Timing breakdown of renderer initialization.
type InitStats struct {
	Programs time.Duration
	Tables   time.Duration
	Scene    time.Duration
	Validate time.Duration
	Launch   time.Duration
}

// Total initialization time.
func (s InitStats) Total() time.Duration {
	return s.Programs + s.Tables + s.Scene + s.Validate + s.Launch
}

type FrameStats struct {
	// Zero based index of the last launch.
	Iteration uint32

	// Accumulation state after the frame.
	State string

	// Whether the frame launched and whether it was presented.
	Launched  bool
	Presented bool

	// Number of accumulation restarts so far.
	Resets int

	// Total render time for the frame.
	RenderTime time.Duration
}

// Render the stats as a table.
func (s FrameStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Iteration", "State", "Launched", "Presented", "Resets", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%d", s.Iteration),
		s.State,
		fmt.Sprintf("%t", s.Launched),
		fmt.Sprintf("%t", s.Presented),
		fmt.Sprintf("%d", s.Resets),
		s.RenderTime.String(),
	})
	table.Render()
	return buf.String()
}

// Render the init timing breakdown as a table.
func (s InitStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Phase", "Time"})
	for _, row := range []struct {
		phase string
		t     time.Duration
	}{
		{"programs", s.Programs},
		{"dispatch and parameter tables", s.Tables},
		{"scene assembly", s.Scene},
		{"validation", s.Validate},
		{"warm-up launch", s.Launch},
	} {
		table.Append([]string{row.phase, row.t.String()})
	}
	table.SetFooter([]string{"TOTAL", s.Total().String()})
	table.Render()
	return buf.String()
}

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levels = []struct {
	name    string
	backend logging.Level
}{
	Debug:   {"debug", logging.DEBUG},
	Info:    {"info", logging.INFO},
	Notice:  {"notice", logging.NOTICE},
	Warning: {"warning", logging.WARNING},
	Error:   {"error", logging.ERROR},
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	mu             sync.Mutex
	leveledBackend logging.LeveledBackend
	level          = Notice
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Redirect all loggers to sink. The current level is kept.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	backend := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	leveledBackend = logging.AddModuleLevel(backend)
	leveledBackend.SetLevel(level.backend(), "")
	logging.SetBackend(leveledBackend)
}

// Set logger verbosity.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()

	level = l
	leveledBackend.SetLevel(l.backend(), "")
}

// Get the current verbosity.
func CurrentLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

func (l Level) backend() logging.Level {
	if int(l) < 0 || int(l) >= len(levels) {
		return logging.NOTICE
	}
	return levels[l].backend
}

func (l Level) String() string {
	if int(l) < 0 || int(l) >= len(levels) {
		return "unknown"
	}
	return levels[l].name
}

// Lookup a level by its name.
func ParseLevel(name string) (Level, error) {
	for l := range levels {
		if strings.EqualFold(levels[l].name, name) {
			return Level(l), nil
		}
	}

	return Notice, fmt.Errorf("log: unknown level %q", name)
}

func init() {
	SetSink(os.Stdout)
}

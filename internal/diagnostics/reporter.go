package diagnostics

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/funvibe/overload/internal/config"
	"github.com/mattn/go-isatty"
)

// Reporter receives diagnostics as they are raised.
// Implementations must be safe for concurrent use.
type Reporter interface {
	Report(d *DiagnosticError)
}

// LogReporter writes one line per diagnostic through a log.Logger.
type LogReporter struct {
	logger *log.Logger
	color  bool
}

// NewLogReporter writes to w. mode is one of config.ColorAuto, ColorAlways
// or ColorNever; auto colours only when w is a terminal and NO_COLOR is unset.
func NewLogReporter(w io.Writer, mode string) *LogReporter {
	flags := log.LstdFlags
	if config.IsTestMode {
		flags = 0
	}
	return &LogReporter{
		logger: log.New(w, "overload: ", flags),
		color:  useColor(w, mode),
	}
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiReset  = "\033[39m"
)

func (r *LogReporter) Report(d *DiagnosticError) {
	msg := d.Error()
	if r.color {
		code := ansiRed
		if d.Severity() == SeverityWarning {
			code = ansiYellow
		}
		msg = code + msg + ansiReset
	}
	r.logger.Println(msg)
}

// Collector keeps every reported diagnostic in memory.
type Collector struct {
	mu    sync.Mutex
	diags []*DiagnosticError
}

func (c *Collector) Report(d *DiagnosticError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []*DiagnosticError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*DiagnosticError(nil), c.diags...)
}

// Codes returns the codes of the collected diagnostics in report order.
func (c *Collector) Codes() []ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	codes := make([]ErrorCode, len(c.diags))
	for i, d := range c.diags {
		codes[i] = d.Code
	}
	return codes
}

func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = nil
}

type discard struct{}

func (discard) Report(*DiagnosticError) {}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Status is the process exit status of a command.
type Status int

const (
	StatusOK     Status = 0
	StatusFailed Status = 1 // definition, build, check or render failed
	StatusUsage  Status = 2 // bad flags or arguments, unreadable input
)

// StatusError ties an error to the exit status it should produce. Stage names
// the step that failed and prefixes the message.
type StatusError struct {
	Status Status
	Stage  string
	Err    error
}

func (e StatusError) Error() string {
	if e.Err == nil {
		return e.Stage
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e StatusError) Unwrap() error { return e.Err }

func fail(status Status, stage string, err error) error {
	return StatusError{Status: status, Stage: stage, Err: err}
}

// StatusOf maps a command error to an exit status. Errors that carry no status
// come from cobra's own argument validation and count as usage errors.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var serr StatusError
	if errors.As(err, &serr) {
		return serr.Status
	}
	return StatusUsage
}

// Format is the output encoding, usable directly as a flag value.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted values of --format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

func (f *Format) String() string { return string(*f) }

func (f *Format) Type() string { return "format" }

func (f *Format) Set(src string) error {
	for _, val := range Formats {
		if string(val) == src {
			*f = val
			return nil
		}
	}
	names := make([]string, len(Formats))
	for i, val := range Formats {
		names[i] = string(val)
	}
	return fmt.Errorf("unknown format %q, expected one of: %s", src, strings.Join(names, ", "))
}

// Printer writes results to Out in the chosen format and diagnostics to Log.
type Printer struct {
	Format  Format
	Out     io.Writer
	Log     io.Writer
	Verbose bool
}

// Print encodes a result. Text output relies on the value's fmt.Stringer form.
func (p *Printer) Print(data any) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(p.Out, data)
		return err
	}
}

// Logf writes a diagnostic line when verbose output is on.
func (p *Printer) Logf(format string, args ...any) {
	if !p.Verbose || p.Log == nil {
		return
	}
	fmt.Fprintf(p.Log, format+"\n", args...)
}

package common

import (
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"gitlab.com/tozd/go/errors"
)

// Level is the severity of a Diagnostic.
type Level int

const (
	LevelBug Level = iota
	LevelError
	LevelWarning
	LevelNote
)

func (l Level) String() string {
	switch l {
	case LevelBug:
		return "bug"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "note"
	}
}

// Diagnostic is a message about a source declaration. Hard failures carry
// LevelError or LevelBug and are returned as errors; warnings and notes are
// collected on the run.
type Diagnostic struct {
	Level   Level
	Pos     ast.Position
	Message string
}

func (d *Diagnostic) Error() string {
	if d.Pos.Filename == "" && d.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Level, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Level, d.Message)
}

// Errorf returns a hard error diagnostic at pos.
func Errorf(pos ast.Position, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{
		Level:   LevelError,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Bugf reports a bug in the generator itself.
func Bugf(pos ast.Position, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{
		Level:   LevelBug,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

func Warningf(pos ast.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Level:   LevelWarning,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Notef is an informational diagnostic about a configured omission.
func Notef(pos ast.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Level:   LevelNote,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsDiagnostic extracts the Diagnostic wrapped in err, if any.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var diag *Diagnostic
	if errors.As(err, &diag) {
		return diag, true
	}
	return nil, false
}

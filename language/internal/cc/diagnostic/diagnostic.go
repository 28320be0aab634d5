// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diagnostic defines the events reported by the preprocessor and the
// macro expander: warnings that let processing continue and errors that abort
// it. Diagnostics are delivered to a Sink; formatting and output are left to
// the Sink implementation.
package diagnostic

import (
	"errors"
	"fmt"

	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

type Severity int

const (
	Severity_Warning Severity = iota
	Severity_Error
)

func (s Severity) String() string {
	switch s {
	case Severity_Warning:
		return "warning"
	case Severity_Error:
		return "error"
	default:
		return "unknown severity"
	}
}

type Kind int

const (
	Kind_Unknown Kind = iota

	// Macro expansion did not reach a fixed point within the iteration cap.
	Kind_MacroExpansionDivergence
	// Macro expansion needed more passes than usual to reach a fixed point.
	Kind_ExcessiveIterations
	// '#' in a function-like macro is not followed by a parameter.
	Kind_InvalidStringifyTarget
	// '##' at the beginning or end of a macro body.
	Kind_PasteAtBoundary
	// Parameter used in a macro body was not supplied by the invocation.
	Kind_MissingParameterAccess
	// Macro redefined with a different shape or replacement list.
	Kind_MacroRedefinitionConflict
	// Function-like macro invocation without the closing parenthesis.
	Kind_UnterminatedInvocation
	// More arguments than parameters of a non-variadic macro.
	Kind_ExcessArguments

	// Malformed or misplaced preprocessor directive.
	Kind_InvalidDirective
	// Condition of #if/#elif could not be evaluated.
	Kind_InvalidCondition
	// #error directive.
	Kind_UserError
	// #warning directive.
	Kind_UserWarning
)

var (
	ErrMacroExpansionDivergence  = errors.New("macro expansion diverged")
	ErrExcessiveIterations       = errors.New("unusually many expansion iterations")
	ErrInvalidStringifyTarget    = errors.New("'#' is not followed by a macro parameter")
	ErrPasteAtBoundary           = errors.New("'##' cannot appear at either end of a macro expansion")
	ErrMissingParameterAccess    = errors.New("missing macro parameter")
	ErrMacroRedefinitionConflict = errors.New("macro redefined")
	ErrUnterminatedInvocation    = errors.New("unterminated argument list invoking macro")
	ErrExcessArguments           = errors.New("too many arguments for macro")
	ErrInvalidDirective          = errors.New("invalid preprocessor directive")
	ErrInvalidCondition          = errors.New("invalid preprocessor condition")
	ErrUserError                 = errors.New("#error")
	ErrUserWarning               = errors.New("#warning")
	errUnknown                   = errors.New("unknown diagnostic")
)

// Err returns the sentinel error matching the kind, suitable for errors.Is.
func (k Kind) Err() error {
	switch k {
	case Kind_MacroExpansionDivergence:
		return ErrMacroExpansionDivergence
	case Kind_ExcessiveIterations:
		return ErrExcessiveIterations
	case Kind_InvalidStringifyTarget:
		return ErrInvalidStringifyTarget
	case Kind_PasteAtBoundary:
		return ErrPasteAtBoundary
	case Kind_MissingParameterAccess:
		return ErrMissingParameterAccess
	case Kind_MacroRedefinitionConflict:
		return ErrMacroRedefinitionConflict
	case Kind_UnterminatedInvocation:
		return ErrUnterminatedInvocation
	case Kind_ExcessArguments:
		return ErrExcessArguments
	case Kind_InvalidDirective:
		return ErrInvalidDirective
	case Kind_InvalidCondition:
		return ErrInvalidCondition
	case Kind_UserError:
		return ErrUserError
	case Kind_UserWarning:
		return ErrUserWarning
	default:
		return errUnknown
	}
}

func (k Kind) String() string { return k.Err().Error() }

// Diagnostic is a single reported event. It implements error so fatal
// diagnostics can be returned directly; errors.Is matches the sentinel of its
// Kind.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Token    lexer.Token // Token the diagnostic refers to, its origin is reported to the user
}

func (d Diagnostic) Error() string {
	if d.Token.Location == lexer.CursorEOF && d.Token.File == "" {
		return fmt.Sprintf("%v: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %v: %s", d.Token.Position(), d.Severity, d.Message)
}

func (d Diagnostic) Unwrap() error { return d.Kind.Err() }

// New creates a diagnostic with a formatted message.
func New(severity Severity, kind Kind, token lexer.Token, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: severity, Kind: kind, Message: fmt.Sprintf(format, args...), Token: token}
}

// Sink receives diagnostics as they are found.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard is a Sink ignoring everything.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Collector is a Sink remembering every reported diagnostic in order.
type Collector struct {
	Diagnostics []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any diagnostic of error severity was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == Severity_Error {
			return true
		}
	}
	return false
}

// Kinds lists the kinds of the collected diagnostics in report order.
func (c *Collector) Kinds() []Kind {
	kinds := make([]Kind, len(c.Diagnostics))
	for i, d := range c.Diagnostics {
		kinds[i] = d.Kind
	}
	return kinds
}

// Tee forwards every diagnostic to all sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, sink := range sinks {
			sink.Report(d)
		}
	})
}

// Copyright 2025 EngFlow Inc. All rights reserved.
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

package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/EngFlow/ccexpand/language/internal/cc/macro"
)

// CommandLineFile is the file name recorded in tokens of macros defined on the command line.
const CommandLineFile = "<command line>"

// A valid macro identifier must follow these rules:
// * First character must be ‘_’ or a letter.
// * Subsequent characters may be ‘_’, letters, or decimal digits.
var macroIdentifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsMacroIdentifier reports whether name can be used as a macro name.
func IsMacroIdentifier(name string) bool {
	return macroIdentifierRegex.MatchString(name)
}

// ParseMacro parses a macro definition in the compiler command line form: "NAME" (defined as 1), "NAME=" (defined as
// empty), "NAME=value" or "NAME(args)=body". A leading -D is tolerated.
func ParseMacro(definition string) (*macro.Definition, error) {
	definition = strings.TrimPrefix(definition, "-D") // tolerate gcc/clang style
	head, body := definition, "1"                     // default: bare macro
	if eqIdx := strings.Index(definition, "="); eqIdx >= 0 {
		head, body = definition[:eqIdx], definition[eqIdx+1:]
	}

	name, _, _ := strings.Cut(head, "(")
	if !IsMacroIdentifier(name) {
		return nil, fmt.Errorf("invalid macro name %q: %w", name, ErrMacroNameInvalid)
	}
	def, err := ParseDefineString(CommandLineFile, head+" "+body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse macro %s: %w", definition, err)
	}
	return def, nil
}

// ParseMacros parses all definitions, skipping the invalid ones. The returned error joins the errors of every
// skipped definition.
func ParseMacros(definitions []string) ([]*macro.Definition, error) {
	var out []*macro.Definition
	var parsingErrors []error
	for _, d := range definitions {
		def, err := ParseMacro(d)
		if err != nil {
			parsingErrors = append(parsingErrors, fmt.Errorf("failed to parse: %v: %w", d, err))
			continue
		}
		out = append(out, def)
	}
	return out, errors.Join(parsingErrors...)
}

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

package macro

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/EngFlow/ccexpand/language/internal/cc/lexer"
)

// Observer is notified around every expansion of a macro body. Calls are
// properly nested: each BeginExpansion is matched by an EndExpansion with the
// same token before the enclosing expansion ends.
type Observer interface {
	BeginExpansion(invocation lexer.Token)
	EndExpansion(invocation lexer.Token)
}

type nopObserver struct{}

func (nopObserver) BeginExpansion(lexer.Token) {}
func (nopObserver) EndExpansion(lexer.Token)   {}

type traceObserver struct {
	logger *log.Logger
	depth  int
}

// NewTraceObserver returns an Observer logging every expansion at debug level,
// indented by nesting depth.
func NewTraceObserver(logger *log.Logger) Observer {
	return &traceObserver{logger: logger}
}

func (o *traceObserver) BeginExpansion(invocation lexer.Token) {
	o.logger.Debug(strings.Repeat("  ", o.depth)+"expanding "+invocation.Content, "position", invocation.Position())
	o.depth++
}

func (o *traceObserver) EndExpansion(invocation lexer.Token) {
	o.depth--
	o.logger.Debug(strings.Repeat("  ", o.depth)+"expanded "+invocation.Content, "position", invocation.Position())
}

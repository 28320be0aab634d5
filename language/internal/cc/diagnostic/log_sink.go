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

package diagnostic

import (
	"github.com/charmbracelet/log"
)

// Structured logging field names.
const (
	FieldKind     = "kind"
	FieldPosition = "position"
	FieldToken    = "token"
)

type logSink struct {
	logger *log.Logger
}

// NewLogSink returns a Sink writing warnings at warn level and errors at error
// level of the given logger.
func NewLogSink(logger *log.Logger) Sink {
	return logSink{logger: logger}
}

func (s logSink) Report(d Diagnostic) {
	keyvals := []any{
		FieldKind, d.Kind.String(),
		FieldPosition, d.Token.Position(),
		FieldToken, d.Token.Content,
	}
	switch d.Severity {
	case Severity_Error:
		s.logger.Error(d.Message, keyvals...)
	default:
		s.logger.Warn(d.Message, keyvals...)
	}
}

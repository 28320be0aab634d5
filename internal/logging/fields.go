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

package logging

// Field names used in structured log records.
const (
	FieldError  = "error"
	FieldPath   = "path"
	FieldFiles  = "files"
	FieldOutput = "output"

	FieldPlatform = "platform"
	FieldDefines  = "defines"
	FieldMacros   = "macros"

	FieldTokens      = "tokens"
	FieldIncludes    = "includes"
	FieldDiagnostics = "diagnostics"
	FieldDirective   = "directive"
	FieldLine        = "line"

	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)

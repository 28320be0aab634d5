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

package cli

import (
	"errors"

	"github.com/EngFlow/ccexpand/language/cc"
)

// Exit codes for ccexpand.
const (
	// ExitSuccess indicates that every file was preprocessed.
	ExitSuccess = 0

	// ExitFailure indicates an error not covered by a more specific code.
	ExitFailure = 1

	// ExitPreprocessingErrors indicates that at least one file stopped on an
	// error diagnostic.
	ExitPreprocessingErrors = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrPreprocessingFailed is returned once all files were processed if
	// any of them failed.
	ErrPreprocessingFailed = errors.New("preprocessing failed")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInput               = errors.New("cannot read input")
	ErrOutput              = errors.New("cannot write output")
)

// ExitCode maps an error returned by the root command to the process exit
// code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrPreprocessingFailed):
		return ExitPreprocessingErrors
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, cc.ErrInvalidDefine), errors.Is(err, cc.ErrInvalidPlatform):
		return ExitInvalidUsage
	case errors.Is(err, ErrInput), errors.Is(err, ErrOutput):
		return ExitIOError
	default:
		return ExitFailure
	}
}

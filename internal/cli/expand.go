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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EngFlow/ccexpand/internal/logging"
	"github.com/EngFlow/ccexpand/language/cc"
)

type expandOptions struct {
	global       *globalOptions
	output       string
	includesOnly bool
}

func (o *expandOptions) run(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	files, err := cc.FindSources(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInput, err)
	}
	engine, err := cc.NewEngine(o.global.engineOptions(cmd))
	if err != nil {
		return err
	}
	logger.Debug("preprocessing",
		logging.FieldFiles, len(files),
		logging.FieldPlatform, o.global.config.Platform,
		logging.FieldDefines, len(o.global.config.Defines))

	out := cmd.OutOrStdout()
	if o.output != "" {
		file, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrOutput, err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("%w: %w", ErrOutput, closeErr)
			}
		}()
		out = file
	}
	writer := bufio.NewWriter(out)

	failed := 0
	for _, path := range files {
		info, err := engine.ProcessFile(ctx, path)
		if err != nil {
			if !errors.Is(err, cc.ErrPreprocessing) {
				return fmt.Errorf("%w: %w", ErrInput, err)
			}
			failed++
			continue
		}
		logger.Debug("preprocessed", logging.FieldPath, info.Name,
			logging.FieldIncludes, len(info.Includes),
			logging.FieldDiagnostics, info.Warnings)
		if o.includesOnly {
			writeIncludes(writer, info)
		} else {
			writeOutput(writer, info, len(files) > 1)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	if o.output != "" {
		logger.Info("output written", logging.FieldOutput, o.output, logging.FieldFiles, len(files)-failed)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrPreprocessingFailed, failed, len(files))
	}
	return nil
}

// writeOutput writes the preprocessed text, preceded by a line marker when
// several files share the output.
func writeOutput(w io.Writer, info cc.FileInfo, marker bool) {
	if marker {
		fmt.Fprintf(w, "# 1 %q\n", info.Name)
	}
	io.WriteString(w, info.Output)
	if info.Output != "" && !strings.HasSuffix(info.Output, "\n") {
		io.WriteString(w, "\n")
	}
}

func writeIncludes(w io.Writer, info cc.FileInfo) {
	for _, include := range info.Includes {
		next := ""
		if include.IsNext {
			next = " (next)"
		}
		fmt.Fprintf(w, "%s:%d: %v%s\n", info.Name, include.Line, include, next)
	}
}

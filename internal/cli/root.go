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

// Package cli provides the Cobra command structure for ccexpand.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EngFlow/ccexpand/internal/config"
	"github.com/EngFlow/ccexpand/internal/logging"
	"github.com/EngFlow/ccexpand/language/cc"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions are the flags shared by all commands, and the configuration
// resolved from them before a command runs.
type globalOptions struct {
	configPath string
	defines    []string
	undefines  []string
	platform   string
	debug      bool
	trace      bool
	color      string

	config *config.Config
}

// resolve loads the configuration file and merges the flags on top of it.
func (o *globalOptions) resolve() error {
	loaded, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	override := &config.Config{
		Defines:   o.defines,
		Undefines: o.undefines,
		Platform:  o.platform,
		Trace:     o.trace,
	}
	if o.debug {
		override.LogLevel = "debug"
	}
	o.config = loaded.Merge(override)
	return nil
}

func (o *globalOptions) engineOptions(cmd *cobra.Command) cc.Options {
	return cc.Options{
		Defines:   o.config.Defines,
		Undefines: o.config.Undefines,
		Platform:  o.config.Platform,
		Logger:    logging.FromContext(cmd.Context()),
		Trace:     o.config.Trace,
	}
}

// NewRootCommand creates the root ccexpand command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &globalOptions{}
	expand := &expandOptions{global: opts}

	rootCmd := &cobra.Command{
		Use:   "ccexpand [flags] FILE|PATTERN...",
		Short: "Expand C preprocessor macros and directives",
		Long: `ccexpand runs the C preprocessor over C and C++ files without following
their includes. Conditional directives are evaluated, macros are expanded and
the included files are reported.

Files are given as paths or doublestar patterns such as "src/**/*.h".
Compressed files ending in .xz are read transparently. Every file starts
from the same predefined macros: those of the target platform, then the -D
definitions, minus the -U names.`,
		Args: cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			level := opts.config.LogLevel
			if opts.config.Trace {
				level = "debug"
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			logging.SetColor(logger, logging.ColorEnabled(opts.color, cmd.ErrOrStderr()))
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return expand.run(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVarP(&opts.defines, "define", "D", nil, "predefine a macro: NAME, NAME=value or NAME(args)=body")
	flags.StringArrayVarP(&opts.undefines, "undefine", "U", nil, "remove a predefined macro")
	flags.StringVar(&opts.platform, "platform", "", `target platform as "os/arch" or "os", or "host"`)
	flags.StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultFileName+" if present)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.trace, "trace", false, "log every macro expansion")
	flags.StringVar(&opts.color, "color", logging.ColorAuto, "colorize logs: auto, always, never")

	rootCmd.Flags().StringVarP(&expand.output, "output", "o", "", "write the output to a file instead of stdout")
	rootCmd.Flags().BoolVar(&expand.includesOnly, "includes", false, "print the included files instead of the preprocessed text")

	// Add subcommands.
	rootCmd.AddCommand(newMacrosCommand(opts))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

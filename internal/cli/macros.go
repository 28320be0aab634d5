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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EngFlow/ccexpand/language/cc"
)

func newMacrosCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "macros",
		Short: "List the predefined macros",
		Long: `List the names of the macros every file starts with, as selected by
--platform, --define and --undefine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := cc.NewEngine(opts.engineOptions(cmd))
			if err != nil {
				return err
			}
			for _, name := range engine.MacroNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	return cmd
}

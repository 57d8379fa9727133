// Copyright 2025 go-highway Authors
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

// Command tileplan computes dispatch plans from the command line.
//
// Usage:
//
//	tileplan plan --segments 10,20,5 --dtype float32 --cores 2
//	tileplan plan --shapes 16x1024,16x1024 --kind binary-list --preset ai-core-48 --json
//	tileplan platform --preset host
//	tileplan kinds
//
// Platform values come from --preset, then TILING_* environment variables,
// then explicit flags. Pass -v to log planner decisions to stderr.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the flags shared by all subcommands.
type globalOptions struct {
	verbose bool
	stderr  io.Writer
}

// logger returns a text logger on stderr, at debug level with --verbose.
func (o *globalOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// newRootCmd builds the command tree writing results to stdout and logs to
// stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stderr: stderr}
	root := &cobra.Command{
		Use:           "tileplan",
		Short:         "Plan how operator invocations are split across accelerator cores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log planner decisions to stderr")

	root.AddCommand(
		newPlanCmd(opts),
		newPlatformCmd(),
		newKindsCmd(),
	)
	return root
}

// Command jvmlite runs a single compiled class on the minimal
// stack-based VM (SPEC_FULL.md §4.8): resolve a dotted main-class name
// against a classpath, eager-load its dependency graph, drive
// <clinit>s, then invoke main.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	env "github.com/xyproto/env/v2"

	"github.com/khlevnov/jvmlite/internal/natives"
	"github.com/khlevnov/jvmlite/internal/registry"
	"github.com/khlevnov/jvmlite/internal/vmdriver"
	"github.com/khlevnov/jvmlite/internal/vmlog"
)

const classpathEnvVar = "JVMLITE_CLASSPATH"

var (
	classpath []string
	verbose   bool
)

// runError distinguishes a failure inside the VM pipeline from a Cobra
// usage error, so main can map the two to the distinct exit codes §4.8
// requires (1 vs 2) without Cobra's own error type telling them apart.
type runError struct{ err error }

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

// resolveClasspath picks the search roots per §4.8: an explicit
// --classpath/--cp flag wins, then JVMLITE_CLASSPATH, then ".".
func resolveClasspath(flagRoots []string, flagGiven bool) []string {
	if flagGiven && len(flagRoots) > 0 {
		return flagRoots
	}
	if fromEnv := env.Str(classpathEnvVar, ""); fromEnv != "" {
		return strings.Split(fromEnv, string(os.PathListSeparator))
	}
	if len(flagRoots) > 0 {
		return flagRoots
	}
	return []string{"."}
}

func run(cmd *cobra.Command, args []string) error {
	mainClass := args[0]
	flagGiven := cmd.Flags().Changed("classpath") || cmd.Flags().Changed("cp")
	roots := resolveClasspath(classpath, flagGiven)

	log := vmlog.New(os.Stderr, verbose)
	reg := registry.New()
	natives.RegisterPrintStream(reg, os.Stdout)

	d := vmdriver.New(roots, mainClass, reg, log)
	if _, err := d.Run(); err != nil {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &runError{err}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jvmlite <main-class>",
		Short: "Run a compiled class on jvmlite's stack-based VM core",
		Long: "jvmlite loads a compiled class and its dependencies from a classpath, " +
			"runs their <clinit> initializers in dependency order, then invokes main.",
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringArrayVar(&classpath, "classpath", nil,
		"directory to search for .class files, in order (repeatable; default \".\")")
	rootCmd.Flags().StringArrayVar(&classpath, "cp", nil,
		"alias for --classpath")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"trace every class load, <clinit>, and INVOKESTATIC dispatch")

	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	var rerr *runError
	if errors.As(err, &rerr) {
		fmt.Fprintln(os.Stderr, rerr.err)
		os.Exit(1)
	}
	os.Exit(2) // Cobra already printed its own usage error
}

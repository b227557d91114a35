package halctl

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Config holds the global halctl flags.
type Config struct {
	Addr    string
	LogLvl  string
	Timeout time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Addr:    envStr("HALCTL_ADDR", "127.0.0.1:8080"),
		LogLvl:  envStr("HALCTL_LOG_LEVEL", "warn"),
		Timeout: 10 * time.Second,
	}
}

// MainWithIO runs halctl with args, writing results to out and errors to
// errOut. It returns the process exit code: 2 for usage errors, 1 for
// failures.
func MainWithIO(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		root := buildRootCmdWith(defaultConfig())
		root.SetOut(errOut)
		_ = root.Usage()
		return 2
	}
	root := buildRootCmdWith(defaultConfig())
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(errOut, errorMsg("%v", err))
		return 1
	}
	return 0
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
func MainWithArgs(args []string) int { return MainWithIO(args, os.Stdout, os.Stderr) }

// Main returns an exit code for use by cmd/halctl.
func Main() int { return MainWithArgs(os.Args[1:]) }

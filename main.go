package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rush-shell/rush/internal/core"
	"github.com/rush-shell/rush/internal/parser"
	"github.com/rush-shell/rush/internal/repl"
)

// version will be set by a go linker flag when a release build is made
var version = "v0.0.0"

// config is the top level of the command line parse tree: a single
// optional positional argument of shell source, plus a version flag.
type config struct {
	Version kong.VersionFlag `short:"V" help:"Print version information"`

	Source string `arg:"" optional:"" help:"shell source to execute; starts the REPL if omitted"`
}

func main() {
	cfg := &config{}
	kong.Parse(cfg, kong.Vars{"version": version})

	ec, err := core.NewExecutionContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ec.Vars.Define("RUSH_VERSION", version)

	jm := core.NewJobManager()

	if cfg.Source == "" {
		os.Exit(repl.Run(ec, jm))
	}

	tree, err := parser.Parse(cfg.Source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	status, err := jm.Run(ec, tree)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(status.ExitCode)
}

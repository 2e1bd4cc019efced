// odshell is an interactive shell for browsing and mutating an
// in-process CANopen object dictionary.
//
// Usage:
//
//	odshell [options]
//
// Options:
//
//	-c, --config       Use specified config file
//	-n, --node-id      Override the configured node id
//	-l, --log-level    Override the configured log level
//
// Commands (in the shell):
//
//	ls                        List every registered object
//	info <index>              Show an object's subindex layout
//	get <index> <subidx>      Read a subindex
//	set <index> <subidx> <v>  Write a subindex
//	help                      Show this help
//	exit / quit / q           Exit
package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/gpcc-project/gpcc/cood"
	"github.com/gpcc-project/gpcc/osal"
)

func main() {
	if err := run(os.Args[1:], os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, env []string) error {
	fs := flag.NewFlagSet("odshell", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})

	flagConfig := fs.StringP("config", "c", "", "use specified config file")
	flagNodeID := fs.Uint32P("node-id", "n", 0, "override the configured node id")
	flagLogLevel := fs.StringP("log-level", "l", "", "override the configured log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *flagNodeID > 255 {
		return fmt.Errorf("odshell: node id %d out of range [0,255]", *flagNodeID)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("odshell: %w", err)
	}

	cfg, err := LoadConfig(workDir, *flagConfig, Config{NodeID: uint8(*flagNodeID), LogLevel: *flagLogLevel}, fs.Changed("node-id"), fs.Changed("log-level"), env)
	if err != nil {
		return err
	}

	t := osal.NewThread("odshell")
	od := cood.NewObjectDictionary()

	if err := buildDemoDictionary(t, od); err != nil {
		return fmt.Errorf("odshell: building demo dictionary: %w", err)
	}

	repl := &REPL{od: od, thread: t, cfg: cfg}

	return repl.Run()
}

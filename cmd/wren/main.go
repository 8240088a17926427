// Command wren boots and runs a Wren machine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/subcommands"
	"github.com/hashicorp/go-hclog"

	"wren/hal"
	"wren/internal/buildinfo"
	"wren/wrenos/machine"
	"wren/wrenos/tasks"
	"wren/wrenos/userland"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&versionCmd{}, "")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(int(subcommands.Execute(ctx)))
}

type runCmd struct {
	config string
	init   string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "boot a machine and run it until power-off" }
func (*runCmd) Usage() string {
	return `run [-config machine.toml] [-init "program args"]:
  Boot a machine from the config file (or defaults) and run it.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "TOML machine config file")
	f.StringVar(&c.init, "init", "", "init command line (overrides config)")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg := machine.DefaultConfig()
	if c.config != "" {
		var err error
		if cfg, err = machine.LoadConfig(c.config); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	if c.init != "" {
		cfg.Init = c.init
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "wren",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
	log.Info("starting", "version", buildinfo.Short())

	reg := userland.NewRegistry()
	tasks.RegisterAll(reg)

	m := machine.New(cfg, hal.New(), reg, log)
	if err := m.Run(ctx); err != nil {
		if err == context.Canceled {
			return subcommands.ExitSuccess
		}
		log.Error("machine stopped", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print the build version" }
func (*versionCmd) Usage() string          { return "version:\n  Print the build version.\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	fmt.Println(buildinfo.Short())
	return subcommands.ExitSuccess
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/nooga/dynobj/pkg/driver"
	"github.com/nooga/dynobj/pkg/errors"
	"github.com/nooga/dynobj/pkg/vm"
)

var (
	kindColor       = color.New(color.FgCyan)
	transitionColor = color.New(color.FgYellow, color.Bold)
	errorColor      = color.New(color.FgRed)
)

// globalState is what the commands share: output streams, the process
// environment and the logger.
type globalState struct {
	stdout io.Writer
	stderr io.Writer
	env    map[string]string
	logger *logrus.Logger
}

func newGlobalState() *globalState {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	return &globalState{stdout: os.Stdout, stderr: os.Stderr, env: env, logger: logger}
}

type rootCommand struct {
	gs           *globalState
	cmd          *cobra.Command
	logLevel     string
	multiContext bool
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "dynobj",
		Short:             "inspect dynamic object and array representations",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())
	c.cmd.AddCommand(getCmdTrace(c), getCmdExec(c))
	return c
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&c.logLevel, "log-level", "", "log level (overrides DYNOBJ_LOG_LEVEL)")
	flags.BoolVar(&c.multiContext, "multi-context", false, "run in multi-context mode")
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	level := c.logLevel
	if !cmd.Flags().Changed("log-level") {
		level = c.gs.env["DYNOBJ_LOG_LEVEL"]
	}
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	c.gs.logger.SetLevel(lvl)
	return nil
}

// newEngine builds an engine from the environment and the global flags, and
// creates its single context.
func (c *rootCommand) newEngine() (*driver.Engine, *vm.Realm, error) {
	override := vm.Config{}
	if c.multiContext {
		override.SingleContext = null.BoolFrom(false)
	}
	if c.logLevel != "" {
		override.LogLevel = null.StringFrom(c.logLevel)
	}
	config, err := vm.GetConsolidatedConfig(c.gs.env, override)
	if err != nil {
		return nil, nil, err
	}
	engine, err := driver.NewEngine(config, c.gs.logger)
	if err != nil {
		return nil, nil, err
	}
	realm, err := engine.NewContext()
	if err != nil {
		return nil, nil, err
	}
	return engine, realm, nil
}

func (c *rootCommand) execute() int {
	if err := c.cmd.Execute(); err != nil {
		errorColor.SetWriter(c.gs.stderr)
		errors.Display(c.gs.stderr, []error{err})
		errorColor.UnsetWriter(c.gs.stderr)
		return 1
	}
	return 0
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ausi/monorepo-tools/cmd"
	"github.com/ausi/monorepo-tools/runner"
)

func main() {
	newRootCmd().Execute()
}

type rootCmd struct {
	*cobra.Command

	configPath string
}

func newRootCmd() *rootCmd {
	c := &rootCmd{
		Command: &cobra.Command{
			Use:   "monorepo-split",
			Short: "split a monorepo's history into per-subfolder repositories",
			Args:  cobra.NoArgs,
		},
	}

	c.Flags().StringVarP(&c.configPath, "config", "c", c.configPath, "path to the configuration")
	c.MarkFlagRequired("config")

	c.Run = func(*cobra.Command, []string) {
		c.runSplit()
	}

	return c
}

func (c *rootCmd) runSplit() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	config := cmd.GetOrPanic(runner.ParseConfigYAML(cmd.GetOrPanic(os.ReadFile(c.configPath))))

	cmd.OrPanic(runner.Run(ctx, config))

	color.Green("monorepo split complete")
}

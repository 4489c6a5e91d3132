// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"gpubox/internal/container"

	"github.com/spf13/cobra"
)

var (
	attachEngine string
	attachName   string

	attachCmd = &cobra.Command{
		Use:   "attach [command...]",
		Short: "Open an interactive shell in your GPU container",
		Long: `Open an interactive shell in your per-user GPU development container.

Runs bash by default; any extra arguments are executed inside the container
instead. The command's exit code is propagated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttach(cmd, args)
		},
	}
)

func init() {
	attachCmd.Flags().StringVar(&attachEngine, "engine", "", "container engine: docker, podman or auto (overrides config)")
	attachCmd.Flags().StringVar(&attachName, "name", "", "container name (overrides the derived per-user name)")
}

func runAttach(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	name, err := resolveName(cfg, attachName)
	if err != nil {
		return err
	}

	engine, err := resolveEngine(cfg, attachEngine)
	if err != nil {
		return err
	}

	exists, err := engine.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("container %s does not exist; run %s first", name, "gpubox up")
	}

	command := args
	if len(command) == 0 {
		command = []string{"bash"}
	}

	result, err := engine.Exec(ctx, name, command, container.ExecOptions{
		Interactive: true,
		TTY:         true,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode, Err: result.Error}
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statusEngine string
	statusName   string

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show whether your GPU container exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
)

func init() {
	statusCmd.Flags().StringVar(&statusEngine, "engine", "", "container engine: docker, podman or auto (overrides config)")
	statusCmd.Flags().StringVar(&statusName, "name", "", "container name (overrides the derived per-user name)")
}

func runStatus(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	name, err := resolveName(cfg, statusName)
	if err != nil {
		return err
	}

	engine, err := resolveEngine(cfg, statusEngine)
	if err != nil {
		return err
	}

	version, err := engine.Version(ctx)
	if err != nil {
		return fmt.Errorf("query %s version: %w", engine.Name(), err)
	}

	exists, err := engine.Exists(ctx, name)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s (%s)\n", CmdStyle.Render("Engine"), engine.Name(), version)
	if exists {
		fmt.Printf("%s: %s %s\n", CmdStyle.Render("Container"), name, SuccessStyle.Render("exists"))
		fmt.Printf("  Attach with: %s\n", CmdStyle.Render("gpubox attach"))
	} else {
		fmt.Printf("%s: %s %s\n", CmdStyle.Render("Container"), name, SubtitleStyle.Render("absent"))
		fmt.Printf("  Create with: %s\n", CmdStyle.Render("gpubox up"))
	}
	return nil
}

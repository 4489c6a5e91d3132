// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	downEngine string
	downName   string

	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Stop and remove your GPU container",
		Long: `Stop and remove your per-user GPU development container.

Removal is destructive (anything outside the bind-mounted directories is
lost), so you are asked to confirm unless --yes is given. If the container
does not exist this is a no-op and exits successfully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd)
		},
	}
)

func init() {
	downCmd.Flags().StringVar(&downEngine, "engine", "", "container engine: docker, podman or auto (overrides config)")
	downCmd.Flags().StringVar(&downName, "name", "", "container name (overrides the derived per-user name)")
}

func runDown(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	name, err := resolveName(cfg, downName)
	if err != nil {
		return err
	}

	engine, err := resolveEngine(cfg, downEngine)
	if err != nil {
		return err
	}

	exists, err := engine.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("%s Container %s does not exist; nothing to do.\n",
			SubtitleStyle.Render("·"), CmdStyle.Render(name.String()))
		return nil
	}

	ok, err := newConfirmer().Confirm(
		fmt.Sprintf("Stop and remove container %s?", name), false)
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !ok {
		fmt.Printf("%s Container %s was left untouched.\n",
			SubtitleStyle.Render("·"), CmdStyle.Render(name.String()))
		return nil
	}

	if err := engine.Stop(ctx, name); err != nil {
		return fmt.Errorf("stop container %s: %w", name, err)
	}
	if err := engine.Remove(ctx, name, false); err != nil {
		return fmt.Errorf("remove container %s: %w", name, err)
	}

	fmt.Printf("%s Container %s removed.\n", SuccessStyle.Render("✓"), CmdStyle.Render(name.String()))
	return nil
}

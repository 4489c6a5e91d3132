// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"gpubox/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `gpubox config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gpubox configuration",
		Long: `Manage gpubox configuration.

Configuration is stored in:
  - Linux: ~/.config/gpubox/config.yaml
  - macOS: ~/Library/Application Support/gpubox/config.yaml
  - Windows: %APPDATA%\gpubox\config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgPath, pathErr := config.ConfigFilePath()
	if pathErr == nil && fileExistsCheck(cfgPath) {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("engine"), valueStyle.Render(string(cfg.Engine)))
	fmt.Printf("%s: %s\n", keyStyle.Render("workspace"), valueStyle.Render(cfg.Workspace))
	fmt.Printf("%s: %s\n", keyStyle.Render("cache_dir"), valueStyle.Render(string(cfg.CacheDir)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("container"))
	fmt.Printf("  image: %s\n", valueStyle.Render(cfg.Container.Image))
	fmt.Printf("  name_prefix: %s\n", valueStyle.Render(cfg.Container.NamePrefix))
	fmt.Printf("  shm_size: %s\n", valueStyle.Render(cfg.Container.ShmSize))
	fmt.Printf("  network: %s\n", valueStyle.Render(cfg.Container.Network))
	fmt.Printf("  gpus: %s\n", valueStyle.Render(cfg.Container.GPUs))
	fmt.Printf("  privileged: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Container.Privileged)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("volumes"))
	if len(cfg.Container.Volumes) == 0 {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, vol := range cfg.Container.Volumes {
			fmt.Printf("  - %s\n", valueStyle.Render(vol))
		}
	}

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s\n", cfgPath)

	cacheDir, err := config.DefaultCacheDir()
	if err == nil {
		fmt.Printf("Cache directory: %s\n", cacheDir)
	}

	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"gpubox/internal/bootstrap"
	"gpubox/internal/config"
	"gpubox/internal/container"
	"gpubox/internal/tui"

	"github.com/spf13/cobra"
)

var (
	upImage     string
	upEngine    string
	upWorkspace string
	upName      string

	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Create your GPU container, or keep the existing one",
		Long: `Create your per-user GPU development container.

The container name is derived from your username, so each user on a shared
machine gets exactly one container. If a container with that name already
exists you are asked whether to stop, remove and recreate it; answering no
(the default) keeps the existing container and exits successfully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd)
		},
	}
)

func init() {
	upCmd.Flags().StringVar(&upImage, "image", "", "container image (overrides config)")
	upCmd.Flags().StringVar(&upEngine, "engine", "", "container engine: docker, podman or auto (overrides config)")
	upCmd.Flags().StringVar(&upWorkspace, "workspace", "", "host workspace directory to mount (overrides config)")
	upCmd.Flags().StringVar(&upName, "name", "", "container name (overrides the derived per-user name)")
}

// autoConfirmer answers every prompt with yes. Used by --yes.
type autoConfirmer struct{}

func (autoConfirmer) Confirm(string, bool) (bool, error) { return true, nil }

// newConfirmer returns the confirmer matching the --yes flag.
func newConfirmer() bootstrap.Confirmer {
	if assumeYes {
		return autoConfirmer{}
	}
	return tui.NewTerminalConfirmer()
}

// resolveEngine picks the container engine from the flag, falling back to config.
func resolveEngine(cfg *config.Config, flagValue string) (container.Engine, error) {
	preferred := container.EngineType(flagValue)
	if flagValue == "" {
		preferred = container.EngineType(cfg.Engine)
	}
	return container.NewEngine(preferred)
}

// resolveName returns the explicit name override or derives the per-user one.
func resolveName(cfg *config.Config, override string) (container.ContainerName, error) {
	if override != "" {
		name := container.ContainerName(override)
		return name, name.Validate()
	}
	return bootstrap.DeriveIdentity(cfg.Container.NamePrefix, bootstrap.DefaultIdentitySources()...)
}

// buildCreateSpec assembles the container creation options from the resolved
// configuration. The home directory, workspace and cache directory are bind
// mounted at their host paths so paths inside the container match the host.
func buildCreateSpec(cfg *config.Config, name container.ContainerName, image, home, workspace, cacheDir string) (container.CreateOptions, error) {
	if image == "" {
		image = cfg.Container.Image
	}

	var volumes []container.VolumeMount
	for _, hostDir := range []string{home, workspace, cacheDir} {
		if hostDir == "" {
			continue
		}
		volumes = append(volumes, container.VolumeMount{
			HostPath:      container.HostFilesystemPath(hostDir),
			ContainerPath: container.MountTargetPath(hostDir),
		})
	}
	for _, raw := range cfg.Container.Volumes {
		mount, err := container.ParseVolumeMount(raw)
		if err != nil {
			return container.CreateOptions{}, fmt.Errorf("configured volume %q: %w", raw, err)
		}
		volumes = append(volumes, mount)
	}

	spec := container.CreateOptions{
		Name:        name,
		Image:       container.ImageRef(image),
		Volumes:     volumes,
		WorkDir:     container.MountTargetPath(workspace),
		GPUs:        container.GPURequest(cfg.Container.GPUs),
		ShmSize:     container.SharedMemorySize(cfg.Container.ShmSize),
		Privileged:  cfg.Container.Privileged,
		Network:     container.NetworkMode(cfg.Container.Network),
		Detach:      true,
		Interactive: true,
		TTY:         true,
	}
	if err := spec.Validate(); err != nil {
		return container.CreateOptions{}, err
	}
	return spec, nil
}

func runUp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	name, err := resolveName(cfg, upName)
	if err != nil {
		return err
	}

	workspace := upWorkspace
	if workspace == "" {
		workspace = cfg.Workspace
	}

	cacheDir := string(cfg.CacheDir)
	if cacheDir == "" {
		if cacheDir, err = config.DefaultCacheDir(); err != nil {
			return err
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("determine home directory: %w", err)
	}

	spec, err := buildCreateSpec(cfg, name, upImage, home, workspace, cacheDir)
	if err != nil {
		return err
	}

	engine, err := resolveEngine(cfg, upEngine)
	if err != nil {
		return err
	}

	boot := bootstrap.New(&bootstrap.EngineRuntime{Engine: engine}, newConfirmer())
	outcome, err := boot.Run(ctx, bootstrap.Options{
		Spec:         spec,
		WorkspaceDir: workspace,
		CacheDir:     cacheDir,
	})
	if err != nil {
		return err
	}

	switch outcome.Decision {
	case bootstrap.DecisionKeep:
		fmt.Printf("%s Container %s already exists and was left untouched.\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(name.String()))
	default:
		fmt.Printf("%s Container %s is up (%s).\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(name.String()), outcome.Handle)
		fmt.Printf("  Attach with: %s\n", CmdStyle.Render(outcome.AttachCommand))
		fmt.Printf("  Or run:      %s\n", CmdStyle.Render("gpubox attach"))
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neonlink/neonlink-scriptd/internal/installer"
	"github.com/neonlink/neonlink-scriptd/internal/logging"
	"github.com/neonlink/neonlink-scriptd/internal/script"
)

var flagInstallMethod = string(installer.MethodCopy)

var installCmd = &cobra.Command{
	Use:   "install <script-id>",
	Short: "Install a defined script into a fixed location",
	Args:  cobra.ExactArgs(1),
	RunE:  doInstall,
}

func doInstall(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)

	method, err := installer.ParseMethod(flagInstallMethod)
	if err != nil {
		return err
	}

	defs, err := script.LoadDefinitions(cfg.DefinitionsPath)
	if err != nil {
		return err
	}

	for _, d := range defs {
		if d.ID != args[0] {
			continue
		}
		installed, err := installer.New(cfg.InstallDir, logger).Install(d, method)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s -> %s\n", d.ID, installed)
		return nil
	}
	return fmt.Errorf("unknown script id %q", args[0])
}

package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CaptShanks/travelprism/internal/history"
	"github.com/CaptShanks/travelprism/internal/updater"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the travelprism version and the configured agent",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "travelprism v%s\n\n", version)

			agentCmd := a.cfg.Agent.Command
			if path, err := exec.LookPath(agentCmd); err == nil {
				fmt.Fprintf(w, "agent: %s (%s)\n", agentCmd, path)
			} else {
				fmt.Fprintf(w, "agent: %s (not found on PATH)\n", agentCmd)
			}
			if len(a.cfg.Agent.Args) > 0 {
				fmt.Fprintf(w, "agent args: %s\n", strings.Join(a.cfg.Agent.Args, " "))
			}
			fmt.Fprintf(w, "agent timeout: %s\n", a.cfg.Agent.Timeout)

			// Update checks never fail the command
			if a.checker != nil {
				if latest, hasUpdate, err := a.checker.CheckLatest(version); err == nil && hasUpdate {
					fmt.Fprintf(w, "\nUpdate available: v%s. Run 'travelprism upgrade' to update (or re-run the install script).\n", latest)
				} else if err != nil {
					a.logger.Debug("update check failed", "err", err)
				}
			}
		},
	}
}

func newUpgradeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade travelprism to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			checker := a.checker
			if checker == nil {
				dir, _ := history.DefaultDir()
				checker = updater.NewChecker(dir, a.cfg.UpdateCheckInterval)
			}

			_, hasUpdate, err := checker.CheckLatest(version)
			if err != nil {
				fmt.Fprintln(w, updater.CurlFallbackMessage(err))
				return fmt.Errorf("error checking for updates: %w", err)
			}
			if !hasUpdate {
				fmt.Fprintln(w, "Already up to date.")
				return nil
			}

			newVer, err := checker.Upgrade(version)
			if err != nil {
				fmt.Fprintln(w, updater.CurlFallbackMessage(err))
				return err
			}
			fmt.Fprintf(w, "Upgraded to v%s. Restart travelprism to use the new version.\n", newVer)
			return nil
		},
	}
}

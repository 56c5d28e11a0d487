package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/web-push-libs/vapid/internal/version"
	"github.com/web-push-libs/vapid/internal/versioncheck"
)

var updateFmt = color.New(color.FgYellow).SprintFunc()

// newVersionCmd creates the version command with the default update checker.
func newVersionCmd() *cobra.Command {
	return newVersionCmdWithChecker(nil)
}

// newVersionCmdWithChecker creates the version command with the given
// checker. Pass nil to build the default checker on first use; tests
// inject a checker pointed at a mock server.
func newVersionCmdWithChecker(checker *versioncheck.Checker) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the vapid version",
		Long: `Show the vapid version.

With --check, also queries GitHub for the latest release and prints
upgrade instructions when a newer version exists. The result is
cached for 24 hours.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("vapid version %s\n", version.Version)

			check, _ := cmd.Flags().GetBool("check")
			skip, _ := cmd.Flags().GetBool("skip-update-check")
			if !check || skip {
				return nil
			}

			c := checker
			if c == nil {
				c = versioncheck.NewChecker()
			}

			result := c.Check(version.Version)
			if result.LatestVersion == "" {
				// Fetch failed with no cached answer to fall back on.
				cmd.Println("(Could not check for updates)")
				return nil
			}

			if result.UpdateAvailable {
				cmd.Println()
				cmd.Printf("%s\n", updateFmt("A newer version is available: "+result.LatestVersion))
				if result.ReleaseURL != "" {
					cmd.Printf("Release notes: %s\n", result.ReleaseURL)
				}
				cmd.Printf("To upgrade: %s\n", result.UpgradeCommand)
			} else {
				cmd.Println("You are running the latest version.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Check GitHub for a newer release")
	cmd.Flags().Bool("skip-update-check", false, "Skip the release check even when --check is set")

	return cmd
}

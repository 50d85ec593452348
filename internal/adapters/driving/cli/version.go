package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
)

const (
	releaseOwner = "custodia-labs"
	releaseRepo  = "repoqa"
)

var versionCheck bool

// checkLatest compares the running version with the newest release tag.
var checkLatest = func(current string) (*latest.CheckResponse, error) {
	return latest.Check(&latest.GithubTag{
		Owner:      releaseOwner,
		Repository: releaseRepo,
	}, current)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.Printf("repoqa version %s\n", version)
		if !versionCheck {
			return nil
		}
		if version == "dev" {
			cmd.Println("Development build, update check skipped.")
			return nil
		}

		res, err := checkLatest(version)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}
		if res.Outdated {
			cmd.Printf("A new version is available: %s\n", res.Current)
			cmd.Printf("Download it from https://github.com/%s/%s/releases\n", releaseOwner, releaseRepo)
			return nil
		}
		cmd.Println("You are using the latest version.")
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

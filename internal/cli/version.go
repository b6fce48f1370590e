package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/branding"
	"github.com/Rainmen-xia/rod-cli-sub001/internal/config"
	"github.com/Rainmen-xia/rod-cli-sub001/internal/github"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
	versionCheck bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check whether a newer template release exists")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionShort {
			fmt.Println(buildVersion)
			return nil
		}

		if versionJSON {
			info := map[string]string{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("%s version %s (commit: %s, built: %s)\n",
			branding.CLIName(), buildVersion, buildCommit, buildDate)

		if versionCheck {
			return checkTemplateRelease(cmd.Context())
		}
		return nil
	},
}

func checkTemplateRelease(ctx context.Context) error {
	client := github.NewClient(config.Load())
	release, err := client.LatestRelease(ctx)
	if err != nil {
		return fmt.Errorf("checking latest template release: %w", err)
	}

	fmt.Printf("Latest template release: %s\n", release.TagName)
	if buildVersion == "dev" {
		return nil
	}
	newer, err := release.NewerThan(buildVersion)
	if err != nil {
		return nil // Non-semver build strings are fine, just skip the hint.
	}
	if newer {
		fmt.Printf("A newer template release than %s is available.\n", buildVersion)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/config"
	"github.com/Rainmen-xia/rod-cli-sub001/internal/github"
	"github.com/Rainmen-xia/rod-cli-sub001/internal/template"
	"github.com/spf13/cobra"
)

var (
	initAssistant string
	initScript    string
	initTag       string
	initForce     bool
)

func init() {
	initCmd.Flags().StringVar(&initAssistant, "ai", string(template.AssistantClaude), "Target AI assistant (claude, copilot, cursor, gemini)")
	initCmd.Flags().StringVar(&initScript, "script", string(template.ScriptSh), "Script dialect (sh, ps)")
	initCmd.Flags().StringVar(&initTag, "tag", "", "Install a specific template release tag instead of the latest")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite files that already exist in the target directory")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a project from a template release",
	Long: `Download the template release matching the chosen assistant and script
dialect and unpack it into the target directory (default: current directory).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := "."
		if len(args) == 1 {
			targetDir = args[0]
		}
		return runInit(targetDir)
	},
}

func runInit(targetDir string) error {
	assistant, err := template.ParseAssistant(initAssistant)
	if err != nil {
		return err
	}
	scriptType, err := template.ParseScriptType(initScript)
	if err != nil {
		return err
	}

	// Ctrl-C cancels the acquisition; partial files are cleaned up by the
	// pipeline itself.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings := config.Load()
	client := github.NewClient(settings)
	installer := template.NewInstaller(client, settings)
	installer.Tag = initTag
	installer.Overwrite = initForce
	installer.OnState = printState

	result, err := installer.Install(ctx, assistant, scriptType, targetDir, printProgress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return explain(err)
	}

	fmt.Printf("Initialized %s project from %s (%s) in %s\n",
		assistant, result.AssetName, result.Tag, result.TargetDir)
	fmt.Printf("%d files written, workflow directory: %s\n",
		len(result.Files), result.WorkflowDir)
	return nil
}

func printState(s template.State) {
	switch s {
	case template.StateFetchingRelease:
		fmt.Fprintln(os.Stderr, "Fetching latest template release...")
	case template.StateExtracting:
		fmt.Fprintln(os.Stderr, "Extracting template...")
	}
}

func printProgress(p github.DownloadProgress) {
	if p.Total == github.UnknownSize {
		fmt.Fprintf(os.Stderr, "\rDownloading... %s (%s/s)",
			formatBytes(p.Downloaded), formatBytes(int64(p.Speed)))
		return
	}
	fmt.Fprintf(os.Stderr, "\rDownloading... %3.0f%% (%s/s)", p.Percent, formatBytes(int64(p.Speed)))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// explain maps pipeline errors to actionable messages.
func explain(err error) error {
	var notFound *template.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "No template asset matches %s-%s.\nAvailable assets:\n",
			notFound.Assistant, notFound.ScriptType)
		for _, name := range notFound.Available {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		return fmt.Errorf("template not found")
	}

	var rateLimited *github.RateLimitError
	if errors.As(err, &rateLimited) {
		if !rateLimited.RateLimit.Reset.IsZero() {
			return fmt.Errorf("API rate limit exceeded, try again at %s (set GITHUB_TOKEN for higher limits)",
				rateLimited.RateLimit.Reset.Format(time.Kitchen))
		}
		return fmt.Errorf("API rate limit exceeded, set GITHUB_TOKEN for higher limits")
	}

	var cancelledErr *github.CancelledError
	if errors.As(err, &cancelledErr) {
		return fmt.Errorf("cancelled")
	}

	return err
}

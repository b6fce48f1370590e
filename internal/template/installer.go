package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/config"
	"github.com/Rainmen-xia/rod-cli-sub001/internal/github"
)

// State names one step of an acquisition. Transitions always run in order;
// any step may instead terminate with an error.
type State string

// Acquisition states.
const (
	StateFetchingRelease State = "fetching-release"
	StateResolvingAsset  State = "resolving-asset"
	StateDownloading     State = "downloading"
	StateExtracting      State = "extracting"
	StateVerifying       State = "verifying"
	StateDone            State = "done"
)

// Installer orchestrates one acquisition: release fetch, asset resolution,
// download, staged extraction, verification.
type Installer struct {
	client   *github.Client
	settings config.Settings

	// Tag pins the release to install; empty means latest.
	Tag string
	// Overwrite allows replacing files that already exist in the target.
	// When false, any conflict aborts before a single file is placed.
	Overwrite bool
	// OnState, when set, observes state transitions.
	OnState func(State)
}

// NewInstaller creates an Installer using the given client and settings.
func NewInstaller(client *github.Client, settings config.Settings) *Installer {
	return &Installer{client: client, settings: settings}
}

// InstallResult reports a completed acquisition.
type InstallResult struct {
	Tag         string   // release tag that was installed
	AssetName   string   // asset the resolver picked
	TargetDir   string   // absolute target directory
	WorkflowDir string   // verified workflow directory inside the target
	Files       []string // placed files, relative to TargetDir
}

// Install runs the acquisition pipeline for the given assistant and script
// type into targetDir. Progress events from the download leg are passed to
// onProgress unchanged. Cancelling ctx at any point returns a
// github.CancelledError and leaves no partial files behind.
func (ins *Installer) Install(ctx context.Context, assistant Assistant, scriptType ScriptType, targetDir string, onProgress github.ProgressFunc) (*InstallResult, error) {
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("resolving target directory: %w", err)
	}

	ins.setState(StateFetchingRelease)
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	release, err := ins.fetchRelease(ctx)
	if err != nil {
		return nil, err
	}

	ins.setState(StateResolvingAsset)
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	asset, err := FindTemplateAsset(release, assistant, scriptType)
	if err != nil {
		return nil, err
	}

	// Scratch space for the archive and the staging tree; always cleaned up.
	workDir, err := os.MkdirTemp("", "rod-template-*")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	ins.setState(StateDownloading)
	archivePath, err := DownloadTemplate(ctx, ins.client, asset, workDir, onProgress)
	if err != nil {
		return nil, err
	}

	ins.setState(StateExtracting)
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	stagingDir := filepath.Join(workDir, "staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, &ExtractionError{Archive: asset.Name, Err: err}
	}
	if err := extractArchive(archivePath, stagingDir); err != nil {
		return nil, &ExtractionError{Archive: asset.Name, Err: err}
	}

	// A template without its workflow directory is a broken archive; catch
	// it while everything is still in staging and the target is untouched.
	if err := checkWorkflowDir(stagingDir, ins.settings.WorkflowDir); err != nil {
		return nil, &ExtractionError{Archive: asset.Name, Err: err}
	}

	if err := os.MkdirAll(absTarget, 0755); err != nil {
		return nil, &ExtractionError{Archive: asset.Name, Err: err}
	}
	files, err := mergeDir(stagingDir, absTarget, ins.Overwrite)
	if err != nil {
		return nil, &ExtractionError{Archive: asset.Name, Err: err}
	}

	ins.setState(StateVerifying)
	if err := checkWorkflowDir(absTarget, ins.settings.WorkflowDir); err != nil {
		return nil, &ExtractionError{Archive: asset.Name, Err: err}
	}

	ins.setState(StateDone)
	return &InstallResult{
		Tag:         release.TagName,
		AssetName:   asset.Name,
		TargetDir:   absTarget,
		WorkflowDir: filepath.Join(absTarget, ins.settings.WorkflowDir),
		Files:       files,
	}, nil
}

func (ins *Installer) fetchRelease(ctx context.Context) (*github.Release, error) {
	if ins.Tag != "" {
		return ins.client.ReleaseByTag(ctx, ins.Tag)
	}
	return ins.client.LatestRelease(ctx)
}

func (ins *Installer) setState(s State) {
	if ins.OnState != nil {
		ins.OnState(s)
	}
}

func checkWorkflowDir(root, workflowDir string) error {
	info, err := os.Stat(filepath.Join(root, workflowDir))
	if err != nil {
		return fmt.Errorf("template is missing the %s directory", workflowDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", workflowDir)
	}
	return nil
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &github.CancelledError{Err: err}
	}
	return nil
}

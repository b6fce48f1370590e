package template

import (
	"strings"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/github"
)

// archiveExts are the packaging formats the template repo publishes.
var archiveExts = []string{".zip", ".tar.gz", ".tgz"}

// FindTemplateAsset picks the one asset matching the assistant and script
// type. An exact "<assistant>-<scriptType>.<ext>" name wins; otherwise the
// first asset (in release order) whose name contains both identifiers is
// used, so repeated calls on the same release are deterministic. Zero
// matches returns a NotFoundError listing every asset in the release.
func FindTemplateAsset(release *github.Release, assistant Assistant, scriptType ScriptType) (*github.Asset, error) {
	want := string(assistant) + "-" + string(scriptType)

	for i := range release.Assets {
		if strings.EqualFold(trimArchiveExt(release.Assets[i].Name), want) {
			return &release.Assets[i], nil
		}
	}

	for i := range release.Assets {
		name := strings.ToLower(release.Assets[i].Name)
		if strings.Contains(name, strings.ToLower(string(assistant))) &&
			strings.Contains(name, strings.ToLower(string(scriptType))) {
			return &release.Assets[i], nil
		}
	}

	return nil, &NotFoundError{
		Assistant:  assistant,
		ScriptType: scriptType,
		Available:  release.AssetNames(),
	}
}

func trimArchiveExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const acceptJSON = "application/vnd.github+json"

// Release is an immutable snapshot of a published template version.
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	CreatedAt   time.Time `json:"created_at"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Label         string    `json:"label"`
	ContentType   string    `json:"content_type"`
	State         string    `json:"state"`
	Size          int64     `json:"size"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DownloadURL   string    `json:"browser_download_url"`
	APIURL        string    `json:"url"`
}

// AssetNames returns the names of all assets in release order.
func (r *Release) AssetNames() []string {
	names := make([]string, len(r.Assets))
	for i, a := range r.Assets {
		names[i] = a.Name
	}
	return names
}

// NewerThan reports whether the release tag is a higher semver than the
// given version string. Leading "v" prefixes are tolerated on both sides.
func (r *Release) NewerThan(version string) (bool, error) {
	rv, err := parseSemver(r.TagName)
	if err != nil {
		return false, fmt.Errorf("parsing release tag %q: %w", r.TagName, err)
	}
	cv, err := parseSemver(version)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return rv.GreaterThan(cv), nil
}

func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}

// LatestRelease fetches the latest release of the configured template repo.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/releases/latest",
		c.settings.Owner, c.settings.Repo)
	return c.fetchRelease(ctx, c.apiURL(endpoint))
}

// ReleaseByTag fetches a release by tag. The tag is normalized to carry a
// leading "v" and must parse as semver.
func (c *Client) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	if _, err := parseSemver(tag); err != nil {
		return nil, fmt.Errorf("invalid release tag %q: %w", tag, err)
	}
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/releases/tags/%s",
		c.settings.Owner, c.settings.Repo, url.PathEscape(tag))
	return c.fetchRelease(ctx, c.apiURL(endpoint))
}

func (c *Client) fetchRelease(ctx context.Context, url string) (*Release, error) {
	resp, err := c.get(ctx, url, acceptJSON, true, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}

	// Reject unexpected document shapes before constructing typed values.
	if err := validateReleaseJSON(url, body); err != nil {
		return nil, err
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, &SchemaError{URL: url, Issues: []string{err.Error()}}
	}
	return &release, nil
}

package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLatestRelease(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	c := testClient(server, 1)
	release, err := c.LatestRelease(context.Background())
	if err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}

	if gotPath != "/repos/Rainmen-xia/rod-templates/releases/latest" {
		t.Errorf("requested path %q", gotPath)
	}
	if release.TagName != "v1.2.0" || release.Name != "v1.2.0" || release.Body != "notes" {
		t.Errorf("unexpected release: %+v", release)
	}
	if release.Draft || release.Prerelease {
		t.Error("draft/prerelease flags should be false")
	}
	if release.PublishedAt.IsZero() {
		t.Error("published_at not parsed")
	}
	if len(release.Assets) != 1 {
		t.Fatalf("got %d assets, want 1", len(release.Assets))
	}
	a := release.Assets[0]
	if a.Name != "claude-sh.zip" || a.Size != 128 || a.DownloadCount != 7 {
		t.Errorf("unexpected asset: %+v", a)
	}
	if a.DownloadURL != "https://example.com/claude-sh.zip" {
		t.Errorf("unexpected download URL: %s", a.DownloadURL)
	}
	if a.APIURL != "https://api.example.com/assets/10" {
		t.Errorf("unexpected API URL: %s", a.APIURL)
	}
}

func TestLatestReleaseRejectsUnexpectedShape(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing tag_name", `{"assets": []}`},
		{"assets not an array", `{"tag_name": "v1.0.0", "assets": "nope"}`},
		{"asset missing size", `{"tag_name": "v1.0.0", "assets": [{"name": "a.zip", "browser_download_url": "https://x/a.zip"}]}`},
		{"not an object", `[1, 2, 3]`},
		{"not JSON at all", `<html>rate limited</html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := testClient(server, 1)
			_, err := c.LatestRelease(context.Background())

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %T: %v", err, err)
			}
			if len(schemaErr.Issues) == 0 {
				t.Error("SchemaError carries no issues")
			}
		})
	}
}

func TestReleaseByTagNormalizesTag(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	c := testClient(server, 1)
	if _, err := c.ReleaseByTag(context.Background(), "1.2.0"); err != nil {
		t.Fatalf("ReleaseByTag failed: %v", err)
	}
	if gotPath != "/repos/Rainmen-xia/rod-templates/releases/tags/v1.2.0" {
		t.Errorf("requested path %q", gotPath)
	}
}

func TestReleaseByTagRejectsInvalidTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for an invalid tag")
	}))
	defer server.Close()

	c := testClient(server, 1)
	if _, err := c.ReleaseByTag(context.Background(), "not-a-version"); err == nil {
		t.Fatal("expected error for invalid tag")
	}
}

func TestReleaseNewerThan(t *testing.T) {
	r := &Release{TagName: "v1.2.0", PublishedAt: time.Now()}

	newer, err := r.NewerThan("1.1.9")
	if err != nil || !newer {
		t.Errorf("NewerThan(1.1.9) = %v, %v; want true", newer, err)
	}
	newer, err = r.NewerThan("v1.2.0")
	if err != nil || newer {
		t.Errorf("NewerThan(v1.2.0) = %v, %v; want false", newer, err)
	}
	if _, err := r.NewerThan("garbage"); err == nil {
		t.Error("expected error for unparseable version")
	}
}

func TestReleaseAssetNames(t *testing.T) {
	r := &Release{Assets: []Asset{{Name: "a.zip"}, {Name: "b.zip"}}}
	names := r.AssetNames()
	if len(names) != 2 || names[0] != "a.zip" || names[1] != "b.zip" {
		t.Errorf("AssetNames() = %v", names)
	}
}

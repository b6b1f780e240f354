package forge

import (
	"errors"
	"testing"

	"github.com/binary-install/grd/pkg/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRef(t *testing.T, raw string, platform repository.Platform) *repository.Ref {
	t.Helper()
	ref, err := repository.Parse(raw, platform, "")
	require.NoError(t, err)
	return ref
}

func mustForge(t *testing.T, platform repository.Platform) Forge {
	t.Helper()
	f, err := New(platform)
	require.NoError(t, err)
	return f
}

func TestReleasesURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		platform repository.Platform
		want     string
	}{
		{
			name:     "github",
			raw:      "cm-auto/gitweb-release-downloader",
			platform: repository.GitHub,
			want:     "https://api.github.com/repos/cm-auto/gitweb-release-downloader/releases",
		},
		{
			name:     "github over http",
			raw:      "http://github.com/owner/name",
			platform: repository.GitHub,
			want:     "http://api.github.com/repos/owner/name/releases",
		},
		{
			name:     "gitea",
			raw:      "https://gitea.com/gitea/tea",
			platform: repository.Gitea,
			want:     "https://gitea.com/api/v1/repos/gitea/tea/releases",
		},
		{
			name:     "gitea with sub path and port",
			raw:      "http://git.example.org:3000/forge/owner/name",
			platform: repository.Gitea,
			want:     "http://git.example.org:3000/forge/api/v1/repos/owner/name/releases",
		},
		{
			name:     "gitlab",
			raw:      "gitlab.com/gitlab-org/cli",
			platform: repository.GitLab,
			want:     "https://gitlab.com/api/v4/projects/gitlab-org%2Fcli/releases",
		},
		{
			name:     "gitlab with sub path",
			raw:      "https://code.example.com/gitlab/owner/name",
			platform: repository.GitLab,
			want:     "https://code.example.com/gitlab/api/v4/projects/owner%2Fname/releases",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := mustRef(t, tt.raw, tt.platform)
			assert.Equal(t, tt.want, mustForge(t, tt.platform).ReleasesURL(ref))
		})
	}
}

func TestAssetRequest(t *testing.T) {
	asset := Asset{Name: "tool.tar.gz", DownloadURL: "https://example.com/tool.tar.gz", ID: 42}

	t.Run("github uses the api with octet-stream", func(t *testing.T) {
		ref := mustRef(t, "owner/name", repository.GitHub)
		req := mustForge(t, repository.GitHub).AssetRequest(ref, asset)
		assert.Equal(t, "https://api.github.com/repos/owner/name/releases/assets/42", req.URL)
		assert.Equal(t, "application/octet-stream", req.Header.Get("Accept"))
	})

	for _, platform := range []repository.Platform{repository.Gitea, repository.GitLab} {
		t.Run(string(platform)+" uses the asset url", func(t *testing.T) {
			ref := mustRef(t, "forge.example.com/owner/name", platform)
			req := mustForge(t, platform).AssetRequest(ref, asset)
			assert.Equal(t, asset.DownloadURL, req.URL)
			assert.Empty(t, req.Header)
		})
	}

	t.Run("github request does not touch the ref", func(t *testing.T) {
		ref := mustRef(t, "owner/name", repository.GitHub)
		before := *ref
		mustForge(t, repository.GitHub).AssetRequest(ref, asset)
		assert.Equal(t, before, *ref)
	})
}

func TestDecodeGitHub(t *testing.T) {
	body := `[
		{
			"html_url": "https://github.com/o/n/releases/tag/v2.0.0-rc1",
			"id": 2,
			"tag_name": "v2.0.0-rc1",
			"name": null,
			"prerelease": true,
			"assets": []
		},
		{
			"id": 1,
			"tag_name": "v1.0.0",
			"prerelease": false,
			"published_at": "2024-01-02T03:04:05Z",
			"assets": [
				{"id": 10, "name": "tool_linux.tar.gz", "url": "https://api.github.com/repos/o/n/releases/assets/10", "browser_download_url": "https://github.com/o/n/releases/download/v1.0.0/tool_linux.tar.gz", "content_type": "application/gzip", "size": 100},
				{"id": 11, "name": "tool_windows.zip", "browser_download_url": "https://github.com/o/n/releases/download/v1.0.0/tool_windows.zip"}
			]
		}
	]`

	got, err := mustForge(t, repository.GitHub).DecodeReleases([]byte(body))
	require.NoError(t, err)

	want := []Release{
		{Tag: "v2.0.0-rc1", Prerelease: true, Assets: []Asset{}},
		{Tag: "v1.0.0", Assets: []Asset{
			{Name: "tool_linux.tar.gz", DownloadURL: "https://github.com/o/n/releases/download/v1.0.0/tool_linux.tar.gz", ID: 10},
			{Name: "tool_windows.zip", DownloadURL: "https://github.com/o/n/releases/download/v1.0.0/tool_windows.zip", ID: 11},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeReleases() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeGitea(t *testing.T) {
	body := `[
		{
			"id": 7,
			"tag_name": "v0.9.2",
			"prerelease": false,
			"draft": false,
			"assets": [
				{"id": 3, "name": "tea-0.9.2-linux-amd64", "size": 10, "uuid": "abc", "browser_download_url": "https://gitea.com/attachments/abc"}
			]
		}
	]`

	got, err := mustForge(t, repository.Gitea).DecodeReleases([]byte(body))
	require.NoError(t, err)

	want := []Release{
		{Tag: "v0.9.2", Assets: []Asset{
			{Name: "tea-0.9.2-linux-amd64", DownloadURL: "https://gitea.com/attachments/abc", ID: 3},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeReleases() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeGitLab(t *testing.T) {
	body := `[
		{
			"tag_name": "v1.1.0",
			"name": "next",
			"upcoming_release": true,
			"assets": {
				"count": 3,
				"sources": [{"format": "zip", "url": "https://gitlab.com/o/n/-/archive/v1.1.0/n-v1.1.0.zip"}],
				"links": [
					{"id": 1, "name": "glab_linux.tar.gz", "url": "https://gitlab.com/o/n/-/package_files/1/download", "direct_asset_url": "https://gitlab.com/o/n/-/releases/v1.1.0/downloads/glab_linux.tar.gz", "link_type": "package"},
					{"id": 2, "name": "glab_darwin.tar.gz", "url": "https://gitlab.com/o/n/-/package_files/2/download", "direct_asset_url": "https://gitlab.com/o/n/-/releases/v1.1.0/downloads/glab_darwin.tar.gz", "link_type": "package"}
				]
			}
		},
		{
			"tag_name": "v1.0.0",
			"upcoming_release": false,
			"assets": {"count": 0, "links": []}
		}
	]`

	got, err := mustForge(t, repository.GitLab).DecodeReleases([]byte(body))
	require.NoError(t, err)

	want := []Release{
		{Tag: "v1.1.0", Prerelease: true, Assets: []Asset{
			{Name: "glab_linux.tar.gz", DownloadURL: "https://gitlab.com/o/n/-/releases/v1.1.0/downloads/glab_linux.tar.gz"},
			{Name: "glab_darwin.tar.gz", DownloadURL: "https://gitlab.com/o/n/-/releases/v1.1.0/downloads/glab_darwin.tar.gz"},
		}},
		{Tag: "v1.0.0", Assets: []Asset{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeReleases() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		platform repository.Platform
		body     string
	}{
		{name: "github object instead of list", platform: repository.GitHub, body: `{"message": "Not Found"}`},
		{name: "gitea truncated", platform: repository.Gitea, body: `[{"tag_name": "v1"`},
		{name: "gitlab wrong type", platform: repository.GitLab, body: `[{"tag_name": 5}]`},
		{name: "empty body", platform: repository.GitHub, body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			releases, err := mustForge(t, tt.platform).DecodeReleases([]byte(tt.body))
			assert.Nil(t, releases)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "got %v", err)
			assert.Equal(t, tt.platform, decodeErr.Platform)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestNewUnknownPlatform(t *testing.T) {
	_, err := New(repository.Platform("svn"))
	assert.Error(t, err)
}

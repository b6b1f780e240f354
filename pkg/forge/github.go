package forge

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/binary-install/grd/pkg/repository"
	"github.com/google/go-github/v72/github"
)

// gitHubAPIHost is the host serving the GitHub REST API
// This is a variable so it can be overridden in tests
var gitHubAPIHost = "api.github.com"

type gitHub struct{}

func (gitHub) ReleasesURL(ref *repository.Ref) string {
	return fmt.Sprintf("%s://%s/repos/%s/%s/releases", ref.Scheme, gitHubAPIHost, ref.Owner, ref.Name)
}

// AssetRequest goes through the API instead of browser_download_url so that
// caller-supplied auth headers also work for private repositories. Without the
// octet-stream Accept header the API answers with the asset's JSON metadata.
func (gitHub) AssetRequest(ref *repository.Ref, asset Asset) AssetRequest {
	header := http.Header{}
	header.Set("Accept", "application/octet-stream")
	return AssetRequest{
		URL:    fmt.Sprintf("%s://%s/repos/%s/%s/releases/assets/%d", ref.Scheme, gitHubAPIHost, ref.Owner, ref.Name, asset.ID),
		Header: header,
	}
}

func (gitHub) DecodeReleases(body []byte) ([]Release, error) {
	var raw []*github.RepositoryRelease
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Platform: repository.GitHub, Err: err}
	}

	releases := make([]Release, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		release := Release{
			Tag:        r.GetTagName(),
			Prerelease: r.GetPrerelease(),
			Assets:     make([]Asset, 0, len(r.Assets)),
		}
		for _, a := range r.Assets {
			release.Assets = append(release.Assets, Asset{
				Name:        a.GetName(),
				DownloadURL: a.GetBrowserDownloadURL(),
				ID:          a.GetID(),
			})
		}
		releases = append(releases, release)
	}
	return releases, nil
}

package forge

import (
	"encoding/json"
	"fmt"

	sdk "code.gitea.io/sdk/gitea"
	"github.com/binary-install/grd/pkg/repository"
)

type gitea struct{}

func (gitea) ReleasesURL(ref *repository.Ref) string {
	return fmt.Sprintf("%s://%s%sapi/v1/repos/%s/%s/releases", ref.Scheme, ref.Origin, ref.SubPath, ref.Owner, ref.Name)
}

func (gitea) AssetRequest(_ *repository.Ref, asset Asset) AssetRequest {
	return AssetRequest{URL: asset.DownloadURL}
}

// Gitea mirrors GitHub's release shape: tag_name, prerelease and
// assets[].browser_download_url.
func (gitea) DecodeReleases(body []byte) ([]Release, error) {
	var raw []*sdk.Release
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Platform: repository.Gitea, Err: err}
	}

	releases := make([]Release, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		release := Release{
			Tag:        r.TagName,
			Prerelease: r.IsPrerelease,
			Assets:     make([]Asset, 0, len(r.Attachments)),
		}
		for _, a := range r.Attachments {
			if a == nil {
				continue
			}
			release.Assets = append(release.Assets, Asset{
				Name:        a.Name,
				DownloadURL: a.DownloadURL,
				ID:          a.ID,
			})
		}
		releases = append(releases, release)
	}
	return releases, nil
}

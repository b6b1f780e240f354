package forge

import (
	"encoding/json"
	"fmt"

	"github.com/binary-install/grd/pkg/repository"
	gl "gitlab.com/gitlab-org/api/client-go"
)

type gitLab struct{}

// ReleasesURL addresses the project by its URL-encoded "owner/name" path.
func (gitLab) ReleasesURL(ref *repository.Ref) string {
	return fmt.Sprintf("%s://%s%sapi/v4/projects/%s%%2F%s/releases", ref.Scheme, ref.Origin, ref.SubPath, ref.Owner, ref.Name)
}

func (gitLab) AssetRequest(_ *repository.Ref, asset Asset) AssetRequest {
	return AssetRequest{URL: asset.DownloadURL}
}

// DecodeReleases maps upcoming_release to Prerelease and the release links
// (assets.links[].direct_asset_url) to assets.
func (gitLab) DecodeReleases(body []byte) ([]Release, error) {
	var raw []*gl.Release
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{Platform: repository.GitLab, Err: err}
	}

	releases := make([]Release, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		release := Release{
			Tag:        r.TagName,
			Prerelease: r.UpcomingRelease,
			Assets:     make([]Asset, 0, len(r.Assets.Links)),
		}
		for _, link := range r.Assets.Links {
			if link == nil {
				continue
			}
			release.Assets = append(release.Assets, Asset{
				Name:        link.Name,
				DownloadURL: link.DirectAssetURL,
			})
		}
		releases = append(releases, release)
	}
	return releases, nil
}

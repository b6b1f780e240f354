// Package forge knows the release API of each supported platform: where the
// release list lives, how an asset is fetched and how the response body maps
// onto the common Release and Asset types.
package forge

import (
	"fmt"
	"net/http"

	"github.com/binary-install/grd/pkg/repository"
)

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name" yaml:"name"`
	DownloadURL string `json:"download_url" yaml:"download_url"`
	// ID is only set for GitHub, where it is needed to build the API download URL.
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`
}

// Release is a tagged bundle of assets. Assets keep the order reported by the API.
type Release struct {
	Tag        string  `json:"tag" yaml:"tag"`
	Prerelease bool    `json:"prerelease" yaml:"prerelease"`
	Assets     []Asset `json:"assets" yaml:"assets"`
}

// AssetRequest describes the GET request that returns an asset's bytes.
type AssetRequest struct {
	URL string
	// Header is merged into the request on top of the caller's headers.
	Header http.Header
}

// Forge is implemented once per platform.
type Forge interface {
	// ReleasesURL returns the endpoint listing the repository's releases.
	ReleasesURL(ref *repository.Ref) string
	// AssetRequest returns how to fetch the bytes of asset.
	AssetRequest(ref *repository.Ref, asset Asset) AssetRequest
	// DecodeReleases maps a release-list response body onto the common shape,
	// preserving API order.
	DecodeReleases(body []byte) ([]Release, error)
}

// New returns the Forge for a platform.
func New(platform repository.Platform) (Forge, error) {
	switch platform {
	case repository.GitHub:
		return gitHub{}, nil
	case repository.Gitea:
		return gitea{}, nil
	case repository.GitLab:
		return gitLab{}, nil
	default:
		return nil, fmt.Errorf("unsupported website type %q", string(platform))
	}
}

// DecodeError is returned when a response body does not have the release
// shape expected for its platform.
type DecodeError struct {
	Platform repository.Platform
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not deserialize %s releases: %v", e.Platform, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Package selection picks releases and assets out of a release list.
//
// Every function trusts the order of the list it is given: forges report
// releases newest first, so the first release passing the filters is the
// latest one. Nothing here re-sorts.
package selection

import (
	"regexp"

	"github.com/binary-install/grd/pkg/forge"
	"github.com/pkg/errors"
)

var (
	ErrNoMatchingRelease = errors.New("no matching release")
	ErrNoMatchingAsset   = errors.New("no matching asset")
)

// Policy selects a release by tag and an asset by name.
type Policy struct {
	// Tag is the exact, case-sensitive release tag. Empty means latest.
	Tag             string
	AllowPrerelease bool
	// Pattern is matched unanchored against asset names.
	Pattern *regexp.Regexp
}

// CompilePattern compiles an asset name pattern.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "could not compile asset pattern")
	}
	return re, nil
}

// Release returns the release matching the policy's tag and prerelease filter.
func (p Policy) Release(releases []forge.Release) (*forge.Release, error) {
	release := FindRelease(releases, p.Tag, p.AllowPrerelease)
	if release == nil {
		return nil, ErrNoMatchingRelease
	}
	return release, nil
}

// Asset returns the first asset of the selected release whose name matches
// the pattern.
func (p Policy) Asset(releases []forge.Release) (*forge.Asset, error) {
	release, err := p.Release(releases)
	if err != nil {
		return nil, err
	}
	asset := FindAsset(release, p.Pattern)
	if asset == nil {
		return nil, ErrNoMatchingAsset
	}
	return asset, nil
}

// FindRelease scans releases in order, skipping prereleases unless allowed.
// With an empty tag the first remaining release wins, otherwise the first one
// whose tag equals tag. A prerelease is skipped even when its tag matches.
func FindRelease(releases []forge.Release, tag string, allowPrerelease bool) *forge.Release {
	for i := range releases {
		release := &releases[i]
		if release.Prerelease && !allowPrerelease {
			continue
		}
		if tag == "" || release.Tag == tag {
			return release
		}
	}
	return nil
}

// FindAsset returns the first asset whose name matches pattern. When several
// assets match, the first one in API order is returned.
func FindAsset(release *forge.Release, pattern *regexp.Regexp) *forge.Asset {
	for i := range release.Assets {
		if pattern.MatchString(release.Assets[i].Name) {
			return &release.Assets[i]
		}
	}
	return nil
}

// FilterAssets returns every asset whose name matches pattern, in order.
func FilterAssets(release *forge.Release, pattern *regexp.Regexp) []forge.Asset {
	matching := []forge.Asset{}
	for _, asset := range release.Assets {
		if pattern.MatchString(asset.Name) {
			matching = append(matching, asset)
		}
	}
	return matching
}

// LatestReleases returns up to count releases passing the prerelease filter.
func LatestReleases(releases []forge.Release, allowPrerelease bool, count int) []forge.Release {
	latest := []forge.Release{}
	for _, release := range releases {
		if len(latest) >= count {
			break
		}
		if release.Prerelease && !allowPrerelease {
			continue
		}
		latest = append(latest, release)
	}
	return latest
}

// AssetsQueryPolicy builds the policy used when listing assets. Prereleases
// are only considered when an explicit tag is asked for.
func AssetsQueryPolicy(tag string, pattern *regexp.Regexp) Policy {
	return Policy{
		Tag:             tag,
		AllowPrerelease: tag != "",
		Pattern:         pattern,
	}
}

package repository

import (
	"fmt"
	"strings"
)

// Platform identifies the kind of forge hosting a repository.
// The zero value means "not specified".
type Platform string

const (
	GitHub Platform = "github"
	Gitea  Platform = "gitea"
	GitLab Platform = "gitlab"
)

// Platforms lists every supported platform.
var Platforms = []Platform{GitHub, Gitea, GitLab}

// ParsePlatform parses a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown website type %q (expected one of %s)", s, platformNames())
}

func (p Platform) String() string {
	return string(p)
}

// Set implements pflag.Value.
func (p *Platform) Set(s string) error {
	parsed, err := ParsePlatform(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type implements pflag.Value.
func (p *Platform) Type() string {
	return "website-type"
}

func platformNames() string {
	names := make([]string, len(Platforms))
	for i, p := range Platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// inference pairs a predicate on the repository string with the platform it
// identifies. Entries are evaluated in order and the first match wins.
type inference struct {
	matches  func(raw string) bool
	platform Platform
}

// Only platforms with a single canonical host can be inferred. Gitea runs on
// arbitrary hosts and always has to be given explicitly.
var inferences = []inference{
	{matches: hostPrefix("github.com/"), platform: GitHub},
	{matches: hostPrefix("gitlab.com/"), platform: GitLab},
}

func hostPrefix(prefix string) func(string) bool {
	return func(raw string) bool {
		return strings.HasPrefix(stripScheme(raw), prefix)
	}
}

// Guess infers the platform from a repository string.
func Guess(raw string) (Platform, bool) {
	for _, inf := range inferences {
		if inf.matches(raw) {
			return inf.platform, true
		}
	}
	return "", false
}

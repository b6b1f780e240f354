package repository

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidRepository is returned when a repository string does not have
	// the shape required by its platform.
	ErrInvalidRepository = errors.New("invalid repository")
	// ErrGuessFailed is returned when no platform was given and none could be
	// inferred from the repository string.
	ErrGuessFailed = errors.New("failed to guess website type")
)

var (
	// origin is optional, github.com is the only host
	gitHubPattern = regexp.MustCompile(`^(?:(?:https?://)?github\.com/)?([^/]+)/([^/]+)$`)

	// the last two path segments are always owner/name, everything between the
	// host and them is the sub path of the instance
	selfHostedPattern = regexp.MustCompile(`^(?:https?://)?([A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+(?::[0-9]+)?)((?:/[^/]+)*)/([^/]+)/([^/]+)$`)
)

// Ref is the normalized location of a repository on a forge.
// It is built once by Parse and not modified afterwards.
type Ref struct {
	Platform Platform
	// Scheme is "http" or "https"
	Scheme string
	// Origin is host[:port]
	Origin string
	// SubPath always starts and ends with "/"
	SubPath string
	Owner   string
	Name    string
	// Raw is the string the user passed, kept verbatim for diagnostics
	Raw string
}

// FullName returns "owner/name".
func (r *Ref) FullName() string {
	return r.Owner + "/" + r.Name
}

// Parse turns a raw repository string into a Ref. If platform is empty it is
// guessed from raw. subPath, when not empty, replaces the sub path derived
// from raw for self-hosted platforms and is ignored for GitHub.
func Parse(raw string, platform Platform, subPath string) (*Ref, error) {
	if platform == "" {
		guessed, ok := Guess(raw)
		if !ok {
			return nil, ErrGuessFailed
		}
		platform = guessed
	}

	ref := &Ref{
		Platform: platform,
		Scheme:   schemeOf(raw),
		Raw:      raw,
	}

	switch platform {
	case GitHub:
		m := gitHubPattern.FindStringSubmatch(raw)
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRepository, raw)
		}
		ref.Origin = "github.com"
		ref.SubPath = "/"
		ref.Owner, ref.Name = m[1], m[2]
	case Gitea, GitLab:
		// Gitea and GitLab share one URL shape for now
		m := selfHostedPattern.FindStringSubmatch(raw)
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRepository, raw)
		}
		ref.Origin = m[1]
		ref.SubPath = normalizeSubPath(m[2])
		if subPath != "" {
			ref.SubPath = normalizeSubPath(subPath)
		}
		ref.Owner, ref.Name = m[3], m[4]
	default:
		return nil, fmt.Errorf("%w: unsupported website type %q", ErrInvalidRepository, string(platform))
	}

	return ref, nil
}

// schemeOf returns "http" only when raw literally starts with "http://".
func schemeOf(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "http"
	}
	return "https"
}

func stripScheme(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "https://"); ok {
		return rest
	}
	return strings.TrimPrefix(raw, "http://")
}

func normalizeSubPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

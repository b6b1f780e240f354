package cmd

import (
	"context"

	"github.com/apex/log"
	"github.com/binary-install/grd/pkg/config"
	"github.com/binary-install/grd/pkg/forge"
	"github.com/binary-install/grd/pkg/httpclient"
	"github.com/binary-install/grd/pkg/repository"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// repositoryOptions are the flags every command needs to reach a repository.
type repositoryOptions struct {
	repository string
	platform   repository.Platform
	subPath    string
	headers    []string
	ipFamily   httpclient.IPFamily
}

func (o *repositoryOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.repository, "repository", "r", "", "Repository url (owner/name is enough for GitHub)")
	fs.VarP(&o.platform, "website-type", "w", "One of github, gitea, gitlab. If omitted, it will be guessed from the repository url")
	fs.StringVarP(&o.subPath, "sub-path", "s", "", "Sub path of the git website (https://example.com/gitea/user/repo -> /gitea)\nIgnored if website type is GitHub")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, "Additional request header \"name: value\" (repeatable)")
	fs.Var(&o.ipFamily, "ip", "IP family to connect over: any, v4 or v6")
}

// target is a resolved repository together with the means to talk to it.
type target struct {
	ref    *repository.Ref
	forge  forge.Forge
	client *httpclient.Client
}

// resolve turns the flags and the config file into a target. Nothing here
// touches the network, so configuration errors surface before any request.
func (o *repositoryOptions) resolve() (*target, error) {
	cfg, cfgPath, err := config.LoadOrDiscover(configFile)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		log.Debugf("Using config file: %s", cfgPath)
	}

	headers := append(append([]string{}, cfg.Headers...), o.headers...)
	header, err := httpclient.ParseHeaders(headers)
	if err != nil {
		return nil, err
	}

	platform := o.platform
	if platform == "" {
		if guessed, ok := repository.Guess(o.repository); ok {
			platform = guessed
		} else {
			platform = cfg.WebsiteType
		}
	}

	ref, err := repository.Parse(o.repository, platform, o.subPath)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"website": ref.Platform,
		"origin":  ref.Origin,
		"subpath": ref.SubPath,
		"owner":   ref.Owner,
		"name":    ref.Name,
	}).Debug("Resolved repository")

	f, err := forge.New(ref.Platform)
	if err != nil {
		return nil, err
	}

	family := o.ipFamily
	if family == "" {
		family = cfg.IPFamily
	}
	client := httpclient.New(family, header)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return &target{ref: ref, forge: f, client: client}, nil
}

// releases fetches and decodes the release list of the target.
func (t *target) releases(ctx context.Context) ([]forge.Release, error) {
	url := t.forge.ReleasesURL(t.ref)
	log.Debugf("Fetching releases from %s", url)

	body, err := t.client.GetBody(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch releases")
	}

	releases, err := t.forge.DecodeReleases(body)
	if err != nil {
		return nil, err
	}
	log.Debugf("Found %d releases", len(releases))
	return releases, nil
}

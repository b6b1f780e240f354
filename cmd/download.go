package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/apex/log"
	"github.com/binary-install/grd/pkg/fetch"
	"github.com/binary-install/grd/pkg/selection"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type downloadOptions struct {
	repositoryOptions
	assetPattern    string
	tag             string
	allowPrerelease bool
	printFilename   bool
}

func newDownloadCommand() *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download an asset (default if no subcommand is specified)",
		Long: `Download the first asset of a release whose name matches a regular expression.

The file is written to the current directory under the asset's name. Progress
and status messages go to stderr.`,
		Example: `  # Latest release of a GitHub repository
  grd -r cm-auto/gitweb-release-downloader -a 'x86_64.*linux'

  # Specific tag on a self-hosted Gitea mounted under /git
  grd download -w gitea -r https://example.com/git/owner/name -t v1.2.0 -a '\.tar\.gz$'

  # Use the downloaded file name in a script
  file=$(grd -r gitlab.com/gitlab-org/cli -a 'Linux_x86_64\.tar\.gz' -f)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, opts)
		},
	}

	opts.repositoryOptions.addFlags(cmd.Flags())
	cmd.Flags().StringVarP(&opts.assetPattern, "asset-pattern", "a", "", "Regex pattern of the asset to download\nIf pattern matches multiple assets, the first matching will be downloaded")
	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "", "Tag of the release (latest if omitted)")
	cmd.Flags().BoolVarP(&opts.allowPrerelease, "prerelease", "p", false, "Include prereleases")
	cmd.Flags().BoolVarP(&opts.printFilename, "print-filename", "f", false, "Print downloaded filename to stdout\nThis will not print, if --quiet is specified")
	_ = cmd.MarkFlagRequired("repository")
	_ = cmd.MarkFlagRequired("asset-pattern")

	return cmd
}

func runDownload(cmd *cobra.Command, opts *downloadOptions) error {
	ctx := cmd.Context()

	pattern, err := selection.CompilePattern(opts.assetPattern)
	if err != nil {
		return err
	}

	t, err := opts.resolve()
	if err != nil {
		return err
	}

	releases, err := t.releases(ctx)
	if err != nil {
		return err
	}

	policy := selection.Policy{
		Tag:             opts.tag,
		AllowPrerelease: opts.allowPrerelease,
		Pattern:         pattern,
	}
	asset, err := policy.Asset(releases)
	if err != nil {
		return errors.Wrapf(err, "Could not find Pattern %q in Tag %q in releases of repository %q",
			opts.assetPattern, tagOrLatest(opts.tag), t.ref.Raw)
	}

	outFile, err := outputFilename(asset.Name)
	if err != nil {
		return err
	}

	log.Infof("Downloading %q", asset.Name)
	req := t.forge.AssetRequest(t.ref, *asset)
	log.Debugf("Asset URL: %s", req.URL)

	var progressOut io.Writer
	if !quiet {
		progressOut = cmd.ErrOrStderr()
	}

	log.Infof("Writing to file %q", outFile)
	written, err := fetch.Download(ctx, t.client, req.URL, req.Header, outFile, progressOut)
	if err != nil {
		return errors.Wrap(err, "Error downloading file")
	}

	log.WithField("bytes", written).Infof("Successfully wrote to file %q", outFile)
	if opts.printFilename && !quiet {
		fmt.Fprint(cmd.OutOrStdout(), outFile)
	}
	return nil
}

// outputFilename keeps the download inside the working directory even if a
// forge reports an asset name containing path separators.
func outputFilename(assetName string) (string, error) {
	name := filepath.Base(filepath.FromSlash(assetName))
	switch name {
	case ".", "..", string(filepath.Separator), "":
		return "", fmt.Errorf("asset name %q is not a valid file name", assetName)
	}
	return name, nil
}

func tagOrLatest(tag string) string {
	if tag == "" {
		return "latest"
	}
	return tag
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/binary-install/grd/pkg/forge"
	"github.com/binary-install/grd/pkg/selection"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query information about assets or releases of a repository",
	}
	cmd.AddCommand(newQueryReleasesCommand())
	cmd.AddCommand(newQueryAssetsCommand())
	return cmd
}

type queryReleasesOptions struct {
	repositoryOptions
	allowPrerelease bool
	count           int
	output          string
}

func newQueryReleasesCommand() *cobra.Command {
	opts := &queryReleasesOptions{}

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "Print the tags of the latest releases, newest first",
		Example: `  # Latest release
  grd query releases -r cm-auto/gitweb-release-downloader

  # Last five releases including prereleases
  grd query releases -r gitlab.com/gitlab-org/cli -p -c 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryReleases(cmd, opts)
		},
	}

	opts.repositoryOptions.addFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&opts.allowPrerelease, "prerelease", "p", false, "Include prereleases")
	cmd.Flags().IntVarP(&opts.count, "count", "c", 1, "The last n releases to show")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("repository")

	return cmd
}

func runQueryReleases(cmd *cobra.Command, opts *queryReleasesOptions) error {
	if opts.count < 1 {
		return fmt.Errorf("invalid count %d: must be at least 1", opts.count)
	}
	if err := validateOutput(opts.output); err != nil {
		return err
	}

	t, err := opts.resolve()
	if err != nil {
		return err
	}
	releases, err := t.releases(cmd.Context())
	if err != nil {
		return err
	}

	latest := selection.LatestReleases(releases, opts.allowPrerelease, opts.count)
	log.Debugf("Showing %d of %d releases", len(latest), len(releases))

	return printResult(cmd.OutOrStdout(), opts.output, latest, func(w io.Writer) {
		for _, release := range latest {
			fmt.Fprintln(w, release.Tag)
		}
	})
}

type queryAssetsOptions struct {
	repositoryOptions
	tag          string
	assetPattern string
	output       string
}

func newQueryAssetsCommand() *cobra.Command {
	opts := &queryAssetsOptions{}

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Print the names of the assets of a release",
		Long: `Print the names of the assets of a release that match a regular expression.

Without --tag the latest release that is not a prerelease is used. An explicit
--tag may name a prerelease.`,
		Example: `  # All assets of the latest release
  grd query assets -r cm-auto/gitweb-release-downloader

  # Archives of a given tag
  grd query assets -r cm-auto/gitweb-release-downloader -t v0.3.0 -a '\.tar\.gz$'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryAssets(cmd, opts)
		},
	}

	opts.repositoryOptions.addFlags(cmd.Flags())
	cmd.Flags().StringVarP(&opts.tag, "tag", "t", "", "Tag of the release\nIf omitted latest tag will be used")
	cmd.Flags().StringVarP(&opts.assetPattern, "asset-pattern", "a", ".*", "Asset regex pattern to match against\nIf not supplied all assets will be shown")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("repository")

	return cmd
}

func runQueryAssets(cmd *cobra.Command, opts *queryAssetsOptions) error {
	pattern, err := selection.CompilePattern(opts.assetPattern)
	if err != nil {
		return err
	}
	if err := validateOutput(opts.output); err != nil {
		return err
	}

	t, err := opts.resolve()
	if err != nil {
		return err
	}
	releases, err := t.releases(cmd.Context())
	if err != nil {
		return err
	}

	release, err := selection.AssetsQueryPolicy(opts.tag, pattern).Release(releases)
	if err != nil {
		return errors.Wrapf(err, "Could not find release with tag %q", tagOrLatest(opts.tag))
	}

	assets := selection.FilterAssets(release, pattern)
	log.Debugf("Release %s: %d of %d assets match", release.Tag, len(assets), len(release.Assets))

	return printResult(cmd.OutOrStdout(), opts.output, assets, func(w io.Writer) {
		for _, asset := range assets {
			fmt.Fprintln(w, asset.Name)
		}
	})
}

func validateOutput(output string) error {
	switch output {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (expected text, json or yaml)", output)
}

// printResult writes v in the requested format, text being one item per line.
func printResult[T forge.Release | forge.Asset](w io.Writer, output string, v []T, text func(io.Writer)) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "failed to encode json")
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		_, err = w.Write(data)
		return err
	default:
		text(w)
		return nil
	}
}

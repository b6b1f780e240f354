package cmd

import (
	"context"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool
)

// Build information, set by main
var (
	Version = "dev"
	Commit  = "none"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "grd",
		Short: "Download release assets from GitHub, Gitea and GitLab",
		Long: `grd (gitweb release downloader) downloads a single asset of a release from a
GitHub, Gitea or GitLab repository, or lists the releases and assets of a repository.

If no subcommand is given, download is assumed:

  grd -r cm-auto/gitweb-release-downloader -a 'linux.*\.tar\.gz'`,
		Version:       Version + " (" + Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr())
			log.Debugf("Config file: %s", configFile)
		},
	}

	// Disable automatic command sorting to maintain semantic order
	cobra.EnableCommandSorting = false

	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: .config/grd.yml)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")

	root.AddCommand(newDownloadCommand())
	root.AddCommand(newQueryCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func setupLogging(w io.Writer) {
	log.SetHandler(cli.New(w))
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
		log.Debugf("Verbose logging enabled")
	case quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// withDefaultCommand inserts "download" when args do not name a subcommand,
// so that "grd -r owner/name -a pattern" works. Bare "grd" prints help.
func withDefaultCommand(root *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return args
	}
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "--version", "-v":
			return args
		}
	}

	sub, _, err := root.Find(args)
	if err == nil && sub != root {
		return args
	}
	return append([]string{"download"}, args...)
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(withDefaultCommand(root, args))
	root.SetOut(stdout)
	root.SetErr(stderr)

	// errors raised before PersistentPreRun, e.g. while parsing flags, still need a handler
	log.SetHandler(cli.New(stderr))

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		return 1
	}
	return 0
}

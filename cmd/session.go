package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/openfetch/bankdl/session"
)

type sessionCmd struct {
	institutions string
	downloadsDir string
	configOut    string
	credsFile    string
}

func (*sessionCmd) Name() string { return "session" }
func (*sessionCmd) Synopsis() string {
	return "synthesizes the finance-dl adapter config for session-protocol institutions"
}
func (*sessionCmd) Usage() string {
	return `session [-institutions capitalone,macu] [-downloads-dir DIR]:
  Resolves credentials for each requested session institution, creates its
  download directory, and writes the adapter config. Institutions without
  complete credentials are skipped. Prints a JSON result to stdout.
`
}

func (c *sessionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.institutions, "institutions", "", "Comma-separated institution identities. Defaults to the full session registry")
	f.StringVar(&c.downloadsDir, "downloads-dir", envDefault("DOWNLOADS_DIR", "/app/downloads"), "Base directory for per-institution downloads")
	f.StringVar(&c.configOut, "config-out", session.DefaultArtifactPath, "Path for the generated adapter config")
	f.StringVar(&c.credsFile, "creds-file", "", "Optional ofxclient-style INI credentials file. Defaults to environment variables")
}

func (c *sessionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	src, err := credSource(c.credsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}
	defer logger.Sync() // nolint:errcheck

	var institutions []string
	if c.institutions != "" {
		institutions = strings.Split(c.institutions, ",")
	}

	result, err := session.Synthesize(session.Options{
		Institutions: institutions,
		DownloadsDir: c.downloadsDir,
		ArtifactPath: c.configOut,
		Creds:        src,
		Logger:       logger,
	})
	printResult(result)
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

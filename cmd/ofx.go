package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/openfetch/bankdl/direct"
	"github.com/openfetch/bankdl/institution"
	"github.com/openfetch/bankdl/vcs"
)

type ofxCmd struct {
	institution string
	days        int
	output      string
	credsFile   string
	commit      bool
}

func (*ofxCmd) Name() string { return "ofx" }
func (*ofxCmd) Synopsis() string {
	return "downloads a statement from one OFX Direct Connect institution"
}
func (*ofxCmd) Usage() string {
	return `ofx -institution NAME [-days 30] [-output DIR]:
  Requests a checking statement over the trailing window and writes the raw
  OFX response to DIR/NAME/NAME_<timestamp>.ofx. Credentials come from
  NAME_USERNAME / NAME_PASSWORD environment variables (upper-cased).
  Prints a JSON result to stdout; exits 0 only on success.
`
}

func (c *ofxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.institution, "institution", "", "Required: institution identity, one of: "+strings.Join(institution.DirectConnectNames(), ", "))
	f.IntVar(&c.days, "days", direct.DefaultDays, "Days of statement history to request")
	f.StringVar(&c.output, "output", direct.DefaultOutputDir, "Base output directory")
	f.StringVar(&c.credsFile, "creds-file", "", "Optional ofxclient-style INI credentials file. Defaults to environment variables")
	f.BoolVar(&c.commit, "commit", false, "Commit the downloaded statement to a git repository at the output directory")
}

func (c *ofxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.institution == "" {
		fmt.Fprint(os.Stderr, "Missing required flag: -institution\n"+c.Usage())
		return subcommands.ExitUsageError
	}
	src, err := credSource(c.credsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	result := direct.Download(direct.Options{
		Institution: c.institution,
		Days:        c.days,
		OutputDir:   c.output,
		Creds:       src,
	})
	printResult(result)
	if !result.Success {
		return subcommands.ExitFailure
	}

	if c.commit {
		if err := commitStatements(c.output, result.Files); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func commitStatements(outputDir string, files []string) error {
	repo, err := vcs.Open(outputDir)
	if err != nil {
		return err
	}
	message := "Add statements"
	if len(files) == 1 {
		message = "Add " + filepath.Base(files[0])
	}
	return repo.CommitFiles(message, files...)
}

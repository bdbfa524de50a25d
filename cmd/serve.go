package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"github.com/openfetch/bankdl/direct"
	"github.com/openfetch/bankdl/server"
)

type serveCmd struct {
	addr         string
	output       string
	downloadsDir string
	credsFile    string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "runs the HTTP server exposing both pipelines" }
func (*serveCmd) Usage() string {
	return `serve [-addr 0.0.0.0:8080]:
  Serves the download pipelines under /api/v1 until terminated.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "0.0.0.0:8080", "Address the server listens on")
	f.StringVar(&c.output, "output", direct.DefaultOutputDir, "Base output directory for direct connect downloads")
	f.StringVar(&c.downloadsDir, "downloads-dir", envDefault("DOWNLOADS_DIR", "/app/downloads"), "Base directory for session adapter downloads")
	f.StringVar(&c.credsFile, "creds-file", "", "Optional ofxclient-style INI credentials file. Defaults to environment variables")
}

func (c *serveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	gin.SetMode(gin.ReleaseMode)
	err = server.Run(server.Options{
		Addr:         c.addr,
		OutputDir:    c.output,
		DownloadsDir: c.downloadsDir,
		Creds:        src,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

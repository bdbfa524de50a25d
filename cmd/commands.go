// Package cmd implements the bankdl subcommands.
package cmd

import (
	"encoding/json"
	"os"

	"github.com/google/subcommands"
	"github.com/openfetch/bankdl/creds"
	"go.uber.org/zap"
)

// Commands lists every registerable subcommand
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&sessionCmd{},
		&ofxCmd{},
		&serveCmd{},
		&versionCmd{},
	}
}

// envDefault returns the environment value for key, or fallback when unset
func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// credSource picks the credentials file when one was given, the environment
// otherwise
func credSource(credsFile string) (creds.Source, error) {
	if credsFile != "" {
		return creds.FromINI(credsFile)
	}
	return creds.Env(), nil
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("DEVELOPMENT") == "true" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// printResult writes the JSON result object to stdout. Every invocation emits
// exactly one result, success or not.
func printResult(result interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(result); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
}

// Package session synthesizes the configuration consumed by the external
// finance-dl session adapter: one entry per institution with resolvable
// credentials, pointing at a per-institution download directory.
package session

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/openfetch/bankdl/creds"
	"github.com/openfetch/bankdl/institution"
	"github.com/openfetch/bankdl/redactor"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultArtifactPath is where the synthesized adapter config lands unless
// overridden. The finance-dl stage reads it from this fixed location.
const DefaultArtifactPath = "/tmp/financedl_config.py"

// OutputFormat is the only statement format the downstream adapter emits
const OutputFormat = "ofx"

// ErrNoCredentials is the terminal failure when no requested institution had
// a complete credential pair
var ErrNoCredentials = errors.New("No credentials configured")

// OutputConfig is one institution's entry in the synthesized adapter config
type OutputConfig struct {
	Module          string          `json:"module"`
	Username        string          `json:"username"`
	Password        redactor.String `json:"password"`
	OutputDirectory string          `json:"output_directory"`
	OutputFormat    string          `json:"output_format"`
}

// Result is the uniform outcome of one synthesis run
type Result struct {
	Status  string   `json:"status"`
	Config  string   `json:"config,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Result status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Options control a synthesis run
type Options struct {
	// Institutions to configure, in order. Defaults to the full session registry.
	Institutions []string
	// DownloadsDir is the base directory receiving per-institution subdirectories
	DownloadsDir string
	// ArtifactPath overrides DefaultArtifactPath
	ArtifactPath string
	// Creds supplies credential lookups
	Creds creds.Source
	Logger *zap.Logger
}

// Synthesize resolves credentials for each requested institution, creates its
// download directory, and writes the adapter config artifact. Institutions
// with incomplete credentials are skipped with a diagnostic, not failed. The
// returned error is non-nil only for run-terminal conditions, and the Result
// always reflects it.
func Synthesize(opts Options) (Result, error) {
	if len(opts.Institutions) == 0 {
		opts.Institutions = institution.SessionNames()
	}
	if opts.ArtifactPath == "" {
		opts.ArtifactPath = DefaultArtifactPath
	}
	if opts.Creds == nil {
		opts.Creds = creds.Env()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	configs := make(map[string]OutputConfig)
	var sources []string
	for _, name := range opts.Institutions {
		inst, err := institution.SessionByName(name)
		if err != nil {
			opts.Logger.Debug("Requested institution is not in the session registry", zap.String("institution", name))
			continue
		}
		pair, err := creds.Resolve(opts.Creds, inst.UsernameKey, inst.PasswordKey)
		if err != nil {
			opts.Logger.Warn("No credentials for institution, skipping", zap.String("institution", name))
			continue
		}
		outputDir := filepath.Join(opts.DownloadsDir, name)
		if err := os.MkdirAll(outputDir, 0750); err != nil {
			err = errors.Wrapf(err, "Error creating download directory for %s", name)
			return Result{Status: StatusError, Message: err.Error()}, err
		}
		configs[name] = OutputConfig{
			Module:          inst.Module,
			Username:        pair.Username,
			Password:        pair.Password,
			OutputDirectory: outputDir,
			OutputFormat:    OutputFormat,
		}
		sources = append(sources, name)
	}

	if len(configs) == 0 {
		return Result{Status: StatusError, Message: ErrNoCredentials.Error()}, ErrNoCredentials
	}

	if err := writeArtifact(opts.ArtifactPath, sources, configs); err != nil {
		err = errors.Wrap(err, "Error writing adapter config")
		return Result{Status: StatusError, Message: err.Error()}, err
	}

	return Result{Status: StatusOK, Config: opts.ArtifactPath, Sources: sources}, nil
}

// writeArtifact renders the config as the Python source literal finance-dl
// imports: a data_sources mapping with one institution entry per line.
// Passwords must survive the trip to disk, so values are encoded with the
// redactor's secret-preserving encoder.
func writeArtifact(path string, sources []string, configs map[string]OutputConfig) error {
	var buf bytes.Buffer
	buf.WriteString("data_sources = {\n")
	for _, name := range sources {
		entry, err := encodeOutputConfig(configs[name])
		if err != nil {
			return err
		}
		key, err := encodeValue(name)
		if err != nil {
			return err
		}
		buf.WriteString("    ")
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(entry)
		buf.WriteString(",\n")
	}
	buf.WriteString("}\n")
	return ioutil.WriteFile(path, buf.Bytes(), 0600)
}

// encodeOutputConfig renders one entry the way the downstream stage has
// always read it: a dict literal with a space after each colon and comma
func encodeOutputConfig(config OutputConfig) (string, error) {
	fields := []struct {
		key   string
		value interface{}
	}{
		{"module", config.Module},
		{"username", config.Username},
		{"password", config.Password},
		{"output_directory", config.OutputDirectory},
		{"output_format", config.OutputFormat},
	}
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		key, err := encodeValue(field.key)
		if err != nil {
			return "", err
		}
		value, err := encodeValue(field.value)
		if err != nil {
			return "", err
		}
		parts = append(parts, key+": "+value)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func encodeValue(v interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := redactor.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

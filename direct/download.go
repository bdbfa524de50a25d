package direct

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/openfetch/bankdl/creds"
	"github.com/openfetch/bankdl/institution"
	"github.com/pkg/errors"
)

const (
	// DefaultDays is the statement window when the caller doesn't pick one
	DefaultDays = 30
	// DefaultOutputDir is the base directory statements are written under
	DefaultOutputDir = "/app/downloads"

	fileTimestampFormat = "20060102_150405"
)

// Result is the uniform outcome of one download attempt
type Result struct {
	Success     bool     `json:"success"`
	Files       []string `json:"files"`
	Institution string   `json:"institution,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Options control a single statement download
type Options struct {
	// Institution identity, must be in the Direct Connect registry
	Institution string
	// Days of history to request, counting back from now
	Days int
	// OutputDir is the base directory. The statement lands in OutputDir/<institution>
	OutputDir string
	// Creds supplies credential lookups
	Creds creds.Source
	// Config overrides the default OFX client identification
	Config Config
}

// Download requests a checking statement for one institution and writes the
// raw response to a timestamped .ofx file. Every failure is converted into
// the Result, never raised: a missing registry entry or credential pair fails
// before any network traffic.
func Download(opts Options) Result {
	return download(opts, time.Now, requestStatement)
}

func requestStatement(connector Connector, req *ofxgo.Request) ([]byte, *ofxgo.Response, error) {
	client, err := newSimpleClient(connector.URL(), connector.Config())
	if err != nil {
		return nil, nil, err
	}
	return requestRaw(client, req)
}

func download(
	opts Options,
	now func() time.Time,
	doRequest func(Connector, *ofxgo.Request) ([]byte, *ofxgo.Response, error),
) Result {
	failure := func(err error) Result {
		return Result{Success: false, Files: []string{}, Error: err.Error()}
	}

	inst, err := institution.DirectConnectByName(opts.Institution)
	if err != nil {
		return failure(err)
	}
	if opts.Creds == nil {
		opts.Creds = creds.Env()
	}
	usernameKey, passwordKey := institution.EnvKeys(opts.Institution)
	pair, err := creds.Resolve(opts.Creds, usernameKey, passwordKey)
	if err != nil {
		return failure(err)
	}

	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	config := opts.Config
	if config == (Config{}) {
		config = DefaultConfig()
	}

	// failures past this point belong to the institution
	failure = func(err error) Result {
		return Result{Success: false, Files: []string{}, Institution: opts.Institution, Error: err.Error()}
	}

	connector := NewConnector(inst, pair.Username, pair.Password, config)
	if err := Validate(connector); err != nil {
		return failure(err)
	}

	outputDir := filepath.Join(opts.OutputDir, opts.Institution)
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return failure(errors.Wrap(err, "Error creating output directory"))
	}

	end := now().UTC()
	start := end.AddDate(0, 0, -opts.Days)
	var req ofxgo.Request
	if err := statementRequest(&req, inst.BankID, start, end, ofxgo.RandomUID); err != nil {
		return failure(err)
	}
	addSignonRequest(connector, &req)

	raw, resp, err := doRequest(connector, &req)
	if err != nil {
		return failure(err)
	}
	if err := checkSignon(resp); err != nil {
		return failure(err)
	}

	fileName := filepath.Join(outputDir, opts.Institution+"_"+now().Format(fileTimestampFormat)+".ofx")
	if err := ioutil.WriteFile(fileName, raw, 0600); err != nil {
		return failure(errors.Wrap(err, "Error writing statement file"))
	}
	return Result{Success: true, Files: []string{fileName}, Institution: opts.Institution}
}

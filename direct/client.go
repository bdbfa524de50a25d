package direct

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	loggerDevEnv = "DEVELOPMENT"
	chaseURL     = "https://ofx.chase.com"
)

var rateLimiterCache = make(map[string]*rate.Limiter)

type ofxClient struct {
	ofxgo.Client
	*zap.Logger
	*rate.Limiter
}

// newSimpleClient creates an ofxgo client for the given endpoint
func newSimpleClient(url string, config Config) (ofxgo.Client, error) {
	return newClient(url, config, getLoggerFromEnv, getClient, getLimiterFromCache)
}

func newClient(
	url string, config Config,
	getLogger func() (*zap.Logger, error),
	getClient func(string, *ofxgo.BasicClient) (ofxgo.Client, error),
	getLimiter func(string) *rate.Limiter,
) (ofxgo.Client, error) {
	c := &ofxClient{}

	basicClient := &ofxgo.BasicClient{NoIndent: config.NoIndent}
	if config.AppID != "" {
		basicClient.AppID = config.AppID
	}
	if config.AppVersion != "" {
		basicClient.AppVer = config.AppVersion
	}
	if config.OFXVersion != "" {
		ofxVersion, err := ofxgo.NewOfxVersion(config.OFXVersion)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to parse ofx version")
		}
		basicClient.SpecVersion = ofxVersion
	}
	basicClient.CarriageReturn = true
	var err error
	c.Client, err = getClient(url, basicClient)
	if err != nil {
		return nil, err
	}
	c.Limiter = getLimiter(url)
	c.Logger, err = getLogger()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func getClient(url string, basicClient *ofxgo.BasicClient) (ofxgo.Client, error) {
	if strings.HasPrefix(url, localhostPrefix) {
		return newLocalClient(url, basicClient)
	}
	return ofxgo.GetClient(url, basicClient), nil
}

func getLimiterFromCache(url string) *rate.Limiter {
	url = strings.Trim(url, "/")
	if limiter, ok := rateLimiterCache[url]; ok {
		return limiter
	}

	var limiter *rate.Limiter
	switch url {
	case chaseURL:
		// Chase throttles aggressive OFX clients, keep a generous gap
		limiter = rate.NewLimiter(rate.Every(2*time.Second), 1)
	default:
		// don't cache an "unlimited" limiter
		return rate.NewLimiter(rate.Inf, 0)
	}
	rateLimiterCache[url] = limiter
	return limiter
}

func getLoggerFromEnv() (*zap.Logger, error) {
	if os.Getenv(loggerDevEnv) == "true" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// requestRaw sends req and returns the raw response body alongside the parsed
// form. The raw bytes are what get written to disk, the parsed form is only
// used to reject failed signons.
func requestRaw(client ofxgo.Client, req *ofxgo.Request) ([]byte, *ofxgo.Response, error) {
	httpResponse, err := client.RequestNoParse(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Error sending request")
	}
	defer httpResponse.Body.Close()

	raw, err := ioutil.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Error reading response body")
	}
	parsed, err := ofxgo.ParseResponse(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, errors.Wrap(err, "Error parsing response body")
	}
	return raw, parsed, nil
}

// Request runs the given request and parses the result
func (c *ofxClient) Request(req *ofxgo.Request) (*ofxgo.Response, error) {
	_, response, err := requestRaw(c, req)
	return response, err
}

// RequestNoParse marshals and sends the request, returning the raw HTTP response
func (c *ofxClient) RequestNoParse(req *ofxgo.Request) (*http.Response, error) {
	requestData, err := c.MarshalRequest(req)
	if err != nil {
		return nil, err
	}
	if ce := c.Logger.Check(zap.DebugLevel, ""); ce != nil {
		requestBytes, err := ioutil.ReadAll(requestData)
		if err != nil {
			return nil, err
		}
		requestData = bytes.NewReader(requestBytes)
		c.Logger.Debug("Marshaled request:\n" + string(requestBytes))
	}
	return c.RawRequest(req.URL, requestData)
}

type requestMarshaler interface {
	MarshalRequest(*ofxgo.Request) (io.Reader, error)
}

// MarshalRequest serializes the request, deferring to the underlying client
// when it has special marshaling requirements
func (c *ofxClient) MarshalRequest(req *ofxgo.Request) (io.Reader, error) {
	if marshaller, ok := c.Client.(requestMarshaler); ok {
		return marshaller.MarshalRequest(req)
	}

	req.SetClientFields(c)
	b, err := req.Marshal()
	return b, errors.Wrap(err, "Failed to marshal request")
}

// RawRequest applies the institution's rate limit before delegating
func (c *ofxClient) RawRequest(url string, r io.Reader) (*http.Response, error) {
	reservation := c.Limiter.Reserve()
	if !reservation.OK() {
		return nil, errors.New("Cannot satisfy rate limiter burst condition")
	}
	delay := reservation.Delay()
	c.Logger.Debug("Rate limiting", zap.Duration("delay", delay))
	time.Sleep(delay)
	return c.Client.RawRequest(url, r)
}

package direct

import (
	"net/http"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func unlimited(string) *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 0)
}

func testLogger() (*zap.Logger, error) {
	return zap.NewNop(), nil
}

func TestNewClient(t *testing.T) {
	t.Run("sets client fields from config", func(t *testing.T) {
		var gotBasic *ofxgo.BasicClient
		client, err := newClient("some URL", Config{
			AppID:      "QWIN",
			AppVersion: "2500",
			OFXVersion: "220",
		}, testLogger, func(url string, basicClient *ofxgo.BasicClient) (ofxgo.Client, error) {
			gotBasic = basicClient
			return basicClient, nil
		}, unlimited)
		require.NoError(t, err)
		require.NotNil(t, client)

		require.NotNil(t, gotBasic)
		assert.Equal(t, "QWIN", gotBasic.AppID)
		assert.Equal(t, "2500", gotBasic.AppVer)
		assert.Equal(t, "220", gotBasic.SpecVersion.String())
		assert.True(t, gotBasic.CarriageReturn)
	})

	t.Run("bad OFX version", func(t *testing.T) {
		_, err := newClient("some URL", Config{OFXVersion: "bogus"}, testLogger, func(string, *ofxgo.BasicClient) (ofxgo.Client, error) {
			return nil, nil
		}, unlimited)
		assert.Error(t, err)
	})

	t.Run("client error", func(t *testing.T) {
		someErr := errors.New("some error")
		_, err := newClient("some URL", Config{}, testLogger, func(string, *ofxgo.BasicClient) (ofxgo.Client, error) {
			return nil, someErr
		}, unlimited)
		assert.Equal(t, someErr, err)
	})
}

func TestGetClient(t *testing.T) {
	client, err := getClient("http://localhost:1234", &ofxgo.BasicClient{})
	require.NoError(t, err)
	assert.IsType(t, &localClient{}, client)

	client, err = getClient("https://ofx.chase.com", &ofxgo.BasicClient{})
	require.NoError(t, err)
	assert.IsType(t, &ofxgo.BasicClient{}, client)
}

func TestGetLimiterFromCache(t *testing.T) {
	limiter := getLimiterFromCache(chaseURL + "/")
	assert.NotEqual(t, rate.Inf, limiter.Limit(), "chase endpoint is rate limited")
	assert.Equal(t, limiter, getLimiterFromCache(chaseURL), "limiter is shared per endpoint")

	unlimitedLimiter := getLimiterFromCache("https://example.com")
	assert.Equal(t, rate.Inf, unlimitedLimiter.Limit())
}

type stubOFXClient struct {
	ofxgo.Client
	response *http.Response
	err      error
}

func (s *stubOFXClient) RequestNoParse(req *ofxgo.Request) (*http.Response, error) {
	return s.response, s.err
}

func TestRequestRawSendError(t *testing.T) {
	someErr := errors.New("connection reset")
	_, _, err := requestRaw(&stubOFXClient{err: someErr}, &ofxgo.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error sending request")
	assert.Contains(t, err.Error(), "connection reset")
}

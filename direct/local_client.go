package direct

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/pkg/errors"
)

const localhostPrefix = "http://localhost"

var errBadLocalhost = errors.New("Refusing to send OFX request to localhost. URL must start with '" + localhostPrefix + "' and not contain a password")

// localClient permits insecure requests to a localhost test server, provided
// no password travels over the wire
type localClient struct {
	ofxgo.Client
}

func newLocalClient(url string, client *ofxgo.BasicClient) (ofxgo.Client, error) {
	if !IsLocalhostTestURL(url) {
		return nil, errBadLocalhost
	}
	return &localClient{Client: client}, nil
}

// IsLocalhostTestURL returns true if urlStr points at plain HTTP on localhost
func IsLocalhostTestURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme == "http" && u.Hostname() == "localhost"
}

// RawRequest posts to the localhost URL after checking no password is included
func (l *localClient) RawRequest(url string, r io.Reader) (*http.Response, error) {
	return l.rawRequest(url, r, http.DefaultClient.Do)
}

func (l *localClient) rawRequest(url string, r io.Reader, doRequest func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	if !IsLocalhostTestURL(url) {
		return nil, errBadLocalhost
	}
	body, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.Contains(string(body), "<USERPASS>") {
		return nil, errBadLocalhost
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body)) // nolint:gosec // URL variable required to fit OFX client interface
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-ofx")
	response, err := doRequest(req)
	if err != nil {
		return nil, err
	}
	if response.StatusCode/100 != 2 {
		return nil, errors.New("OFXQuery request status: " + response.Status)
	}
	return response, nil
}

// MarshalRequest serializes the request with the password elided, working
// around ofxgo's validation of empty passwords
func (l *localClient) MarshalRequest(req *ofxgo.Request) (io.Reader, error) {
	req.SetClientFields(l)

	const fakePassword = "something"
	req.Signon.UserPass = fakePassword
	b, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	requestString := b.String()
	foundPass := false
	for _, passwordElem := range []string{"<USERPASS>" + fakePassword + "</USERPASS>", "<USERPASS>" + fakePassword} {
		if strings.Contains(requestString, passwordElem) {
			requestString = strings.Replace(requestString, passwordElem, "", 1)
			foundPass = true
			break
		}
	}
	if !foundPass {
		return nil, errors.New("Error formatting with an empty password")
	}
	return strings.NewReader(requestString), nil
}

// RequestNoParse marshals and posts the request, returning the raw response
func (l *localClient) RequestNoParse(req *ofxgo.Request) (*http.Response, error) {
	buf, err := l.MarshalRequest(req)
	if err != nil {
		return nil, err
	}
	return l.RawRequest(req.URL, buf)
}

// Request runs the given request and parses the result
func (l *localClient) Request(req *ofxgo.Request) (*ofxgo.Response, error) {
	response, err := l.RequestNoParse(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	return ofxgo.ParseResponse(response.Body)
}

// Package direct downloads statements straight from an institution's
// OFX/QFX API over Direct Connect.
package direct

import (
	"net/url"
	"time"

	"github.com/aclindsa/ofxgo"
	sErrors "github.com/openfetch/bankdl/errors"
	"github.com/openfetch/bankdl/institution"
	"github.com/openfetch/bankdl/redactor"
	"github.com/pkg/errors"
)

const (
	// OFX signon status code for rejected credentials
	ofxAuthFailed = 15500
)

// ErrAuthFailed is returned whenever a signon fails with an authentication problem
var ErrAuthFailed = errors.New("Username or password is incorrect")

// Connector holds everything needed to sign on to one institution's OFX API
type Connector interface {
	institution.Institution

	URL() string
	Username() string
	Password() redactor.String
	Config() Config
}

type connector struct {
	institution.BasicInstitution

	ConnectorURL      string
	ConnectorUsername string
	ConnectorPassword redactor.String
	ConnectorConfig   Config
}

// NewConnector combines an institution's registry record with credentials
func NewConnector(inst institution.DirectConnect, username string, password redactor.String, config Config) Connector {
	return &connector{
		BasicInstitution:  inst.BasicInstitution,
		ConnectorURL:      inst.URL,
		ConnectorUsername: username,
		ConnectorPassword: password,
		ConnectorConfig:   config,
	}
}

func (c *connector) URL() string {
	return c.ConnectorURL
}

func (c *connector) Username() string {
	return c.ConnectorUsername
}

func (c *connector) Password() redactor.String {
	return c.ConnectorPassword
}

func (c *connector) Config() Config {
	return c.ConnectorConfig
}

// Validate checks the connector for a usable signon configuration
func Validate(connector Connector) error {
	var errs sErrors.Errors
	if errs.ErrIf(connector == nil, "Connector must not be empty") {
		return errs.ErrOrNil()
	}
	errs.ErrIf(connector.FID() == "", "Institution FID must not be empty")
	errs.ErrIf(connector.Org() == "", "Institution org must not be empty")
	if !errs.ErrIf(connector.URL() == "", "Institution URL must not be empty") {
		u, err := url.Parse(connector.URL())
		if err != nil {
			errs.AddErr(errors.Wrap(err, "Institution URL is malformed"))
		} else {
			errs.ErrIf(u.Scheme != "https" && u.Hostname() != "localhost", "Institution URL is required to use HTTPS")
		}
	}
	errs.ErrIf(connector.Username() == "", "Institution username must not be empty")
	errs.ErrIf(connector.Password() == "" && !IsLocalhostTestURL(connector.URL()), "Institution password must not be empty")

	config := connector.Config()
	errs.ErrIf(config.AppID == "", "Institution app ID must not be empty")
	errs.ErrIf(config.AppVersion == "", "Institution app version must not be empty")
	if !errs.ErrIf(config.OFXVersion == "", "Institution OFX version must not be empty") {
		_, err := ofxgo.NewOfxVersion(config.OFXVersion)
		errs.AddErr(err)
	}
	return errs.ErrOrNil()
}

// statementRequest appends a checking statement request for the given routing
// number and window. The account ID is deliberately left empty: both
// registered institutions return statements for all accounts under the signon.
func statementRequest(req *ofxgo.Request, bankID string, start, end time.Time, getUID func() (*ofxgo.UID, error)) error {
	uid, err := getUID()
	if err != nil {
		return err
	}
	accountType, err := ofxgo.NewAcctType("CHECKING")
	if err != nil {
		return err
	}

	req.Bank = append(req.Bank, &ofxgo.StatementRequest{
		TrnUID: *uid,
		BankAcctFrom: ofxgo.BankAcct{
			BankID:   ofxgo.String(bankID),
			AcctID:   ofxgo.String(""),
			AcctType: accountType,
		},
		DtStart: &ofxgo.Date{Time: start},
		DtEnd:   &ofxgo.Date{Time: end},
		Include: true, // include transactions, not just balances
	})
	return nil
}

func addSignonRequest(connector Connector, req *ofxgo.Request) {
	config := connector.Config()
	req.URL = connector.URL()
	req.Signon = ofxgo.SignonRequest{
		ClientUID: ofxgo.UID(config.ClientID),
		Org:       ofxgo.String(connector.Org()),
		Fid:       ofxgo.String(connector.FID()),
		UserID:    ofxgo.String(connector.Username()),
		UserPass:  ofxgo.String(connector.Password()),
	}
}

// checkSignon converts a nonzero signon status into an error
func checkSignon(resp *ofxgo.Response) error {
	if resp.Signon.Status.Code == 0 {
		return nil
	}
	if resp.Signon.Status.Code == ofxAuthFailed {
		return ErrAuthFailed
	}
	meaning, err := resp.Signon.Status.CodeMeaning()
	if err != nil {
		return errors.Wrap(err, "Failed to parse OFX response code")
	}
	return errors.Errorf("Nonzero signon status (%d: %s) with message: %s", resp.Signon.Status.Code, meaning, resp.Signon.Status.Message)
}

package institution

import "strings"

// DirectConnect is an institution reachable over OFX Direct Connect
type DirectConnect struct {
	BasicInstitution

	URL    string
	BankID string // routing number used on statement requests
}

// Session is an institution scraped by the external finance-dl adapter.
// UsernameKey and PasswordKey name the environment variables holding its
// credentials.
type Session struct {
	Module      string
	UsernameKey string
	PasswordKey string
}

var directConnectRegistry = map[string]DirectConnect{
	"chase": {
		BasicInstitution: BasicInstitution{
			InstDescription: "Chase",
			InstFID:         "10898",
			InstOrg:         "B1",
		},
		URL:    "https://ofx.chase.com",
		BankID: "072000326",
	},
	"usaa": {
		BasicInstitution: BasicInstitution{
			InstDescription: "USAA",
			InstFID:         "24591",
			InstOrg:         "USAA",
		},
		URL:    "https://service2.usaa.com/ofx/OFXServer",
		BankID: "314074269",
	},
}

// session institutions in their canonical request order
var sessionOrder = []string{"capitalone", "macu", "m1finance"}

var sessionRegistry = map[string]Session{
	"capitalone": {
		Module:      "finance_dl.capitalone",
		UsernameKey: "CAPITALONE_USERNAME",
		PasswordKey: "CAPITALONE_PASSWORD",
	},
	"macu": {
		Module:      "finance_dl.mountain_america",
		UsernameKey: "MACU_USERNAME",
		PasswordKey: "MACU_PASSWORD",
	},
	// M1 Finance keeps the shorter M1_ env prefix
	"m1finance": {
		Module:      "finance_dl.m1finance",
		UsernameKey: "M1_USERNAME",
		PasswordKey: "M1_PASSWORD",
	},
}

// DirectConnectByName returns the Direct Connect record for name
func DirectConnectByName(name string) (DirectConnect, error) {
	inst, ok := directConnectRegistry[name]
	if !ok {
		return DirectConnect{}, NewErrUnknown(name)
	}
	return inst, nil
}

// SessionByName returns the session-protocol record for name
func SessionByName(name string) (Session, error) {
	inst, ok := sessionRegistry[name]
	if !ok {
		return Session{}, NewErrUnknown(name)
	}
	return inst, nil
}

// SessionNames returns all session institution identities in canonical order
func SessionNames() []string {
	names := make([]string, len(sessionOrder))
	copy(names, sessionOrder)
	return names
}

// direct connect institutions in their canonical order
var directConnectOrder = []string{"chase", "usaa"}

// DirectConnectNames returns all Direct Connect identities
func DirectConnectNames() []string {
	names := make([]string, len(directConnectOrder))
	copy(names, directConnectOrder)
	return names
}

// EnvKeys derives the credential environment variable names for a Direct
// Connect institution, e.g. chase -> CHASE_USERNAME, CHASE_PASSWORD
func EnvKeys(name string) (usernameKey, passwordKey string) {
	upper := strings.ToUpper(name)
	return upper + "_USERNAME", upper + "_PASSWORD"
}

package direct

// Config contains OFX client connection details
type Config struct {
	AppID      string
	AppVersion string
	ClientID   string `json:",omitempty"`
	OFXVersion string
	NoIndent   bool `json:",omitempty"`
}

// DefaultConfig returns the client identification sent to every institution.
// Most OFX servers only accept requests claiming to be Quicken.
func DefaultConfig() Config {
	return Config{
		AppID:      "QWIN",
		AppVersion: "2500",
		OFXVersion: "220",
	}
}

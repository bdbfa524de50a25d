// Package institution holds the compiled-in registries of supported
// financial institutions and their connection metadata.
package institution

import (
	"github.com/johnstarich/go/regext"
	"github.com/pkg/errors"
)

// Institution identifies a financial institution on the OFX network
type Institution interface {
	Description() string
	FID() string
	Org() string
}

// BasicInstitution is the minimum information to identify an institution
type BasicInstitution struct {
	InstDescription string
	InstFID         string
	InstOrg         string
}

// Description implements Institution
func (i BasicInstitution) Description() string {
	return i.InstDescription
}

// FID implements Institution
func (i BasicInstitution) FID() string {
	return i.InstFID
}

// Org implements Institution
func (i BasicInstitution) Org() string {
	return i.InstOrg
}

var identityPattern = regext.MustCompile(`
	^
	[a-z0-9]+    # identities are lower-case registry keys, e.g. "capitalone"
	$
`)

// ValidIdentity reports whether name is shaped like a registry key.
// It does not imply the identity is registered.
func ValidIdentity(name string) bool {
	return identityPattern.MatchString(name)
}

// NewErrUnknown creates the error returned for identities missing from a registry
func NewErrUnknown(name string) error {
	return errors.Errorf("Unknown institution: %s", name)
}

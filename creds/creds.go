// Package creds resolves institution credentials from an injected key-value
// source, typically the process environment.
package creds

import (
	"os"

	"github.com/openfetch/bankdl/redactor"
	"github.com/pkg/errors"
)

// ErrMissing is returned when either half of a credential pair is absent.
// A username without a password is treated the same as no credentials.
var ErrMissing = errors.New("Missing credentials")

// Source looks up a credential value by key. An empty string means the key
// is not set.
type Source interface {
	Lookup(key string) string
}

// SourceFunc adapts a function into a Source
type SourceFunc func(key string) string

// Lookup implements Source
func (f SourceFunc) Lookup(key string) string {
	return f(key)
}

// Env returns a Source backed by the process environment
func Env() Source {
	return SourceFunc(os.Getenv)
}

// Pair is one institution's username and password
type Pair struct {
	Username string
	Password redactor.String
}

// Resolve fetches both credential keys from src. Both must resolve to
// non-empty values or ErrMissing is returned.
func Resolve(src Source, usernameKey, passwordKey string) (Pair, error) {
	username := src.Lookup(usernameKey)
	password := src.Lookup(passwordKey)
	if username == "" || password == "" {
		return Pair{}, ErrMissing
	}
	return Pair{Username: username, Password: redactor.String(password)}, nil
}

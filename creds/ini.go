package creds

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// FromINI loads an ofxclient-style credentials file as a Source. Each
// institution gets a section with username and password keys:
//
//	[capitalone]
//	username = someone
//	password = hunter2
//
// Lookups use the same keys as the environment source: section and key are
// joined as SECTION_KEY, upper-cased.
func FromINI(fileName string) (Source, error) {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error loading credentials file '%s'", fileName)
	}

	values := make(map[string]string)
	for _, section := range iniFile.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		prefix := strings.ToUpper(section.Name()) + "_"
		for key, value := range section.KeysHash() {
			values[prefix+strings.ToUpper(key)] = value
		}
	}
	return iniSource(values), nil
}

type iniSource map[string]string

func (s iniSource) Lookup(key string) string {
	return s[key]
}

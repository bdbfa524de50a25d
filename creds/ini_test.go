package creds

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromINI(t *testing.T) {
	dir, err := ioutil.TempDir("", "bankdl-creds")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "credentials.ini")
	contents := `
[capitalone]
username = someone
password = hunter2

[m1]
username = other
password = secret
`
	require.NoError(t, ioutil.WriteFile(fileName, []byte(contents), 0600))

	src, err := FromINI(fileName)
	require.NoError(t, err)

	assert.Equal(t, "someone", src.Lookup("CAPITALONE_USERNAME"))
	assert.Equal(t, "hunter2", src.Lookup("CAPITALONE_PASSWORD"))
	assert.Equal(t, "other", src.Lookup("M1_USERNAME"))
	assert.Equal(t, "", src.Lookup("MACU_USERNAME"))
}

func TestFromINIMissingFile(t *testing.T) {
	_, err := FromINI("does-not-exist.ini")
	assert.Error(t, err)
}

package institution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectConnectByName(t *testing.T) {
	chase, err := DirectConnectByName("chase")
	require.NoError(t, err)
	assert.Equal(t, "https://ofx.chase.com", chase.URL)
	assert.Equal(t, "10898", chase.FID())
	assert.Equal(t, "B1", chase.Org())
	assert.Equal(t, "072000326", chase.BankID)

	usaa, err := DirectConnectByName("usaa")
	require.NoError(t, err)
	assert.Equal(t, "https://service2.usaa.com/ofx/OFXServer", usaa.URL)
	assert.Equal(t, "24591", usaa.FID())
	assert.Equal(t, "314074269", usaa.BankID)

	_, err = DirectConnectByName("capitalone")
	require.Error(t, err)
	assert.Equal(t, "Unknown institution: capitalone", err.Error())
}

func TestSessionByName(t *testing.T) {
	for _, tc := range []struct {
		name        string
		module      string
		usernameKey string
	}{
		{"capitalone", "finance_dl.capitalone", "CAPITALONE_USERNAME"},
		{"macu", "finance_dl.mountain_america", "MACU_USERNAME"},
		{"m1finance", "finance_dl.m1finance", "M1_USERNAME"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			inst, err := SessionByName(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.module, inst.Module)
			assert.Equal(t, tc.usernameKey, inst.UsernameKey)
		})
	}

	_, err := SessionByName("chase")
	assert.Error(t, err)
}

func TestSessionNames(t *testing.T) {
	assert.Equal(t, []string{"capitalone", "macu", "m1finance"}, SessionNames())
}

func TestDirectConnectNames(t *testing.T) {
	assert.Equal(t, []string{"chase", "usaa"}, DirectConnectNames())
}

func TestEnvKeys(t *testing.T) {
	usernameKey, passwordKey := EnvKeys("chase")
	assert.Equal(t, "CHASE_USERNAME", usernameKey)
	assert.Equal(t, "CHASE_PASSWORD", passwordKey)
}

func TestValidIdentity(t *testing.T) {
	assert.True(t, ValidIdentity("chase"))
	assert.True(t, ValidIdentity("m1finance"))
	assert.False(t, ValidIdentity(""))
	assert.False(t, ValidIdentity("Chase"))
	assert.False(t, ValidIdentity("../etc/passwd"))
}

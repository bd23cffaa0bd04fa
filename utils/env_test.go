package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := GetDatabaseURL()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	url, err := GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", url)
}

func TestGetSalesforceCredentials(t *testing.T) {
	t.Setenv("SF_INSTANCE_URL", "https://example.my.salesforce.com")
	t.Setenv("SF_ACCESS_TOKEN", "")
	t.Setenv("SF_API_VERSION", "")
	_, err := GetSalesforceCredentials()
	assert.Error(t, err)

	t.Setenv("SF_ACCESS_TOKEN", "token")
	creds, err := GetSalesforceCredentials()
	require.NoError(t, err)
	assert.Equal(t, "token", creds.AccessToken)
	assert.Empty(t, creds.APIVersion)
}

func TestWriteEnvTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	written, err := WriteEnvTemplate(path)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SF_API_VERSION=v59.0")

	written, err = WriteEnvTemplate(path)
	require.NoError(t, err)
	assert.False(t, written)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sms-sim/internal/widget"
)

func TestNewTransport(t *testing.T) {
	transport, httpTransport, err := newTransport("http://localhost:3000", "http")
	require.NoError(t, err)
	assert.Same(t, httpTransport, transport)

	transport, httpTransport, err = newTransport("http://localhost:3000", "WS")
	require.NoError(t, err)
	assert.IsType(t, &widget.WSTransport{}, transport)
	assert.NotNil(t, httpTransport)

	_, _, err = newTransport("http://localhost:3000", "carrier-pigeon")
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	fields, err := loadProfile("", "default")
	require.NoError(t, err)
	assert.Equal(t, "Business", fields.BusinessName)

	_, err = loadProfile("", "nope")
	assert.ErrorContains(t, err, "default")

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - id: bakery\n    name: Bakery\n    businessName: Crumbs\n    delay: \"1\"\n"), 0o600))

	fields, err = loadProfile(path, "bakery")
	require.NoError(t, err)
	assert.Equal(t, "Crumbs", fields.BusinessName)
	assert.Equal(t, "1", fields.Delay)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "1234567890123456789012345678901212345678901234567890123456789012"

func TestLoadConfigDefaults(t *testing.T) {
	conf, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "python-scripts/charger_api.py", conf.ProducerPath)
	assert.Equal(t, "--monitor", conf.MonitorFlag)
	assert.Equal(t, 60, conf.SnapshotTimeoutSeconds)
	assert.Equal(t, ":8090", conf.ServerAddress)
	assert.Equal(t, 100, conf.EventQueueSize)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
PRODUCER_PATH: /opt/charger/charger_api
SNAPSHOT_TIMEOUT_SECONDS: 15
SERVER_ADDRESS: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(yaml), 0o644))

	conf, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/charger/charger_api", conf.ProducerPath)
	assert.Equal(t, 15, conf.SnapshotTimeoutSeconds)
	assert.Equal(t, "127.0.0.1:9000", conf.ServerAddress)
	// Untouched keys keep their defaults.
	assert.Equal(t, "--monitor", conf.MonitorFlag)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"),
		[]byte("SERVER_ADDRESS: 127.0.0.1:9000\n"), 0o644))

	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")

	conf, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", conf.ServerAddress)
}

func TestLoadConfigValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"),
		[]byte("EVENT_QUEUE_SIZE: 0\n"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestCredentialsRoundTrip(t *testing.T) {
	plain := ChargerCredentials{Username: "Assembler", Password: "E2"}

	encrypted, err := EncryptCredentials(plain, testKey)
	require.NoError(t, err)
	assert.NotEqual(t, plain.Username, encrypted.Username)
	assert.NotEqual(t, plain.Password, encrypted.Password)

	decrypted, err := DecryptCredentials(encrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)
}

func TestProducerEnv(t *testing.T) {
	encrypted, err := EncryptCredentials(ChargerCredentials{Username: "Assembler", Password: "E2"}, testKey)
	require.NoError(t, err)

	conf := &Config{
		EncryptionKey:  testKey,
		ChargerAPIUser: encrypted.Username,
		ChargerAPIPass: encrypted.Password,
	}

	env, err := conf.ProducerEnv()
	require.NoError(t, err)
	assert.Contains(t, env, "CHARGER_API_USERNAME=Assembler")
	assert.Contains(t, env, "CHARGER_API_PASSWORD=E2")
}

func TestProducerEnvWithoutCredentials(t *testing.T) {
	env, err := (&Config{}).ProducerEnv()
	require.NoError(t, err)
	assert.Empty(t, env)
}

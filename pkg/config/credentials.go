package config

import (
	"fmt"

	"github.com/firdasafridi/gocrypt"
)

// ChargerCredentials is the login pair the producer uses against the charger
// HTTP API. At rest (config file) the fields are AES-encrypted; they are
// decrypted only at spawn time, into the producer's environment.
type ChargerCredentials struct {
	Username string `gocrypt:"aes"`
	Password string `gocrypt:"aes"`
}

// EncryptCredentials encrypts the fields tagged with gocrypt using the provided secret key.
func EncryptCredentials(creds ChargerCredentials, secretKey string) (ChargerCredentials, error) {
	aesOpt, err := gocrypt.NewAESOpt(secretKey)
	if err != nil {
		return creds, err
	}

	gc := gocrypt.New(&gocrypt.Option{AESOpt: aesOpt})
	if err := gc.Encrypt(&creds); err != nil {
		return creds, err
	}
	return creds, nil
}

// DecryptCredentials decrypts the fields tagged with gocrypt using the provided secret key.
func DecryptCredentials(creds ChargerCredentials, secretKey string) (ChargerCredentials, error) {
	aesOpt, err := gocrypt.NewAESOpt(secretKey)
	if err != nil {
		return creds, err
	}

	gc := gocrypt.New(&gocrypt.Option{AESOpt: aesOpt})
	if err := gc.Decrypt(&creds); err != nil {
		return creds, err
	}
	return creds, nil
}

// ProducerEnv builds the extra environment injected into producer spawns:
// CHARGER_API_USERNAME and CHARGER_API_PASSWORD, decrypted from the config.
// With no encryption key or no stored credentials the result is empty and
// the producer falls back to its own defaults.
func (c *Config) ProducerEnv() ([]string, error) {
	if c.EncryptionKey == "" || c.ChargerAPIUser == "" {
		return nil, nil
	}

	creds, err := DecryptCredentials(ChargerCredentials{
		Username: c.ChargerAPIUser,
		Password: c.ChargerAPIPass,
	}, c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decrypting charger credentials: %w", err)
	}

	return []string{
		"CHARGER_API_USERNAME=" + creds.Username,
		"CHARGER_API_PASSWORD=" + creds.Password,
	}, nil
}

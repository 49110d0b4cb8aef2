// credtool encrypts a charger API credential pair for the config file.
// The printed values go into CHARGER_API_USERNAME_ENC / CHARGER_API_PASSWORD_ENC;
// the bridge decrypts them at spawn time with BRIDGE_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"chargerbridge/pkg/config"
)

func main() {
	key := flag.String("key", "", "AES secret key (same value as BRIDGE_SECRET)")
	username := flag.String("username", "", "charger API username")
	password := flag.String("password", "", "charger API password")
	flag.Parse()

	if *key == "" || *username == "" {
		fmt.Fprintln(os.Stderr, "usage: credtool -key <secret> -username <user> -password <pass>")
		os.Exit(2)
	}

	creds, err := config.EncryptCredentials(config.ChargerCredentials{
		Username: *username,
		Password: *password,
	}, *key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encryption failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("CHARGER_API_USERNAME_ENC=%s\n", creds.Username)
	fmt.Printf("CHARGER_API_PASSWORD_ENC=%s\n", creds.Password)
}

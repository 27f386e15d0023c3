// encryptkey is a CLI helper that encrypts an LLM API key for safe storage
// in config.yaml or a user credential record.
//
// Usage:
//
//	export FITFORGE_MASTER_KEY=$(openssl rand -hex 32)  # generate once, store securely
//	encryptkey sk-xxxx                                  # prints the enc:v1:... payload
//
// The printed string can be pasted directly as the defaultProvider.apiKey
// value in config.yaml; the server decrypts it at startup.
package main

import (
	"fmt"
	"os"

	"fitforge/internal/vault"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "Usage: encryptkey <plaintext-api-key>")
		fmt.Fprintln(os.Stderr, "       FITFORGE_MASTER_KEY must be set (64 hex chars)")
		os.Exit(1)
	}

	plaintext := os.Args[1]

	master, err := vault.MasterSecretFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Generate a master key with: openssl rand -hex 32")
		os.Exit(1)
	}

	v, err := vault.New(master)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	encrypted, err := v.Encrypt(plaintext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encryption failed: %v\n", err)
		os.Exit(1)
	}

	// Print just the encrypted payload — ready to paste into config.
	fmt.Println(encrypted)
}

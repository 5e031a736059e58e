// Command tenauth-keygen generates the key material a deployment needs: an
// RSA signing key pair as PEM files plus the matching JWKS document for
// publishing to verifiers.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tenauth/tenauth/keys"
)

func main() {
	var (
		dir  = flag.String("dir", "certs", "output directory for the generated files")
		bits = flag.Int("bits", 2048, "RSA key size in bits")
		kid  = flag.String("kid", "", "key id to embed in the JWKS; random UUID if empty")
	)
	flag.Parse()

	if *bits < 2048 {
		fmt.Fprintln(os.Stderr, "bits must be >= 2048")
		os.Exit(2)
	}

	if err := run(*dir, *bits, *kid); err != nil {
		fmt.Fprintf(os.Stderr, "tenauth-keygen: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string, bits int, kid string) error {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	if kid == "" {
		kid = uuid.NewString()
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(filepath.Join(dir, "private.pem"), privatePEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})
	if err := os.WriteFile(filepath.Join(dir, "public.pem"), publicPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	jwks := keys.JWKS{Keys: []keys.JWK{keys.MarshalKey(&key.PublicKey, kid)}}
	encoded, err := json.MarshalIndent(jwks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode jwks: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "jwks.json"), append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write jwks: %w", err)
	}

	fmt.Printf("wrote %s, %s, %s (kid %s)\n",
		filepath.Join(dir, "private.pem"),
		filepath.Join(dir, "public.pem"),
		filepath.Join(dir, "jwks.json"),
		kid,
	)
	return nil
}

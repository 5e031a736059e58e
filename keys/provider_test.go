package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var (
	providerKeyOnce sync.Once
	providerKey     *rsa.PrivateKey
)

func providerRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	providerKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		providerKey = key
	})
	return providerKey
}

func writeKeyPair(t *testing.T, dir string) (privatePath, publicPath string) {
	t.Helper()
	key := providerRSAKey(t)

	privatePath = filepath.Join(dir, "private.pem")
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
		t.Fatalf("write private key: %v", err)
	}

	publicPath = filepath.Join(dir, "public.pem")
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil {
		t.Fatalf("write public key: %v", err)
	}
	return privatePath, publicPath
}

func TestFileProviderLoadsKeyPair(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t, t.TempDir())
	provider := NewFileProvider(privatePath, publicPath, []byte("secret")).WithKeyID("kid-file")

	signer, err := provider.Signer()
	if err != nil {
		t.Fatalf("signer failed: %v", err)
	}
	if !signer.Equal(providerRSAKey(t)) {
		t.Fatal("loaded private key does not match the written one")
	}

	pub, err := provider.Verifier("kid-file")
	if err != nil {
		t.Fatalf("verifier failed: %v", err)
	}
	if !pub.Equal(&providerRSAKey(t).PublicKey) {
		t.Fatal("loaded public key does not match the written one")
	}

	if provider.KeyID() != "kid-file" {
		t.Fatalf("expected kid-file, got %q", provider.KeyID())
	}
	if string(provider.RefreshSecret()) != "secret" {
		t.Fatal("refresh secret not carried through")
	}
}

func TestFileProviderDerivesPublicFromPrivate(t *testing.T) {
	privatePath, _ := writeKeyPair(t, t.TempDir())
	provider := NewFileProvider(privatePath, "", []byte("secret"))

	pub, err := provider.Verifier("")
	if err != nil {
		t.Fatalf("verifier failed: %v", err)
	}
	if !pub.Equal(&providerRSAKey(t).PublicKey) {
		t.Fatal("derived public key does not match")
	}
}

func TestFileProviderMissingKeyFile(t *testing.T) {
	provider := NewFileProvider(filepath.Join(t.TempDir(), "absent.pem"), "", []byte("secret"))

	_, err := provider.Signer()
	if err == nil {
		t.Fatal("expected signer to fail")
	}
	if err.Error() != "Error while reading private key" {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
}

func TestFileProviderUnparseablePEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pem")
	if err := os.WriteFile(path, []byte("not a pem file"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	provider := NewFileProvider(path, "", []byte("secret"))

	_, err := provider.Signer()
	if err == nil || err.Error() != "Error while reading private key" {
		t.Fatalf("expected the fixed read error, got %v", err)
	}
}

func TestFileProviderCachesAfterFirstRead(t *testing.T) {
	dir := t.TempDir()
	privatePath, _ := writeKeyPair(t, dir)
	provider := NewFileProvider(privatePath, "", []byte("secret"))

	if _, err := provider.Signer(); err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if err := os.Remove(privatePath); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := provider.Signer(); err != nil {
		t.Fatalf("cached read failed after file removal: %v", err)
	}
}

func TestFileProviderRejectsUnknownKID(t *testing.T) {
	privatePath, _ := writeKeyPair(t, t.TempDir())
	provider := NewFileProvider(privatePath, "", []byte("secret")).WithKeyID("kid-a")

	if _, err := provider.Verifier("kid-b"); !errors.Is(err, ErrUnknownKeyID) {
		t.Fatalf("expected ErrUnknownKeyID, got %v", err)
	}
}

func TestStaticProviderValidation(t *testing.T) {
	if _, err := NewStaticProvider(nil, []byte("secret")); err == nil {
		t.Fatal("expected nil key to be rejected")
	}
	if _, err := NewStaticProvider(providerRSAKey(t), nil); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}

func TestStaticProviderResolvesKID(t *testing.T) {
	provider, err := NewStaticProvider(providerRSAKey(t), []byte("secret"))
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if provider.KeyID() == "" {
		t.Fatal("expected a generated kid")
	}

	provider.WithKeyID("kid-static")

	for _, kid := range []string{"", "kid-static"} {
		pub, err := provider.Verifier(kid)
		if err != nil {
			t.Fatalf("verifier(%q) failed: %v", kid, err)
		}
		if !pub.Equal(&providerRSAKey(t).PublicKey) {
			t.Fatal("public key mismatch")
		}
	}

	if _, err := provider.Verifier("other"); !errors.Is(err, ErrUnknownKeyID) {
		t.Fatalf("expected ErrUnknownKeyID, got %v", err)
	}

	signer, err := provider.Signer()
	if err != nil || signer != providerRSAKey(t) {
		t.Fatalf("signer mismatch: %v", err)
	}

	pubs, err := provider.PublicKeys()
	if err != nil {
		t.Fatalf("public keys failed: %v", err)
	}
	if len(pubs) != 1 || pubs["kid-static"] == nil {
		t.Fatalf("unexpected public key set: %v", pubs)
	}
}

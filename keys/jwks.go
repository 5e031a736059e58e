package keys

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"sort"
)

// JWK is one RSA public key in JWKS wire form.
//
// JWK instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is the published key set document.
//
// JWKS instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// MarshalKey converts an RSA public key to its JWK form.
func MarshalKey(pub *rsa.PublicKey, kid string) JWK {
	return JWK{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		Kid: kid,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func parseJWK(k JWK) (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, errors.New("unsupported key type")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, errors.New("invalid modulus encoding")
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, errors.New("invalid exponent encoding")
	}
	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)
	if n.Sign() <= 0 || !e.IsInt64() || e.Int64() <= 1 {
		return nil, errors.New("invalid key parameters")
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// Handler serves the provider's public keys as a JWKS document. Mount it at
// a well-known path so verifiers in other processes can run on a
// [RemoteKeySet].
func Handler(set PublicKeySet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pubs, err := set.PublicKeys()
		if err != nil {
			http.Error(w, "key set unavailable", http.StatusInternalServerError)
			return
		}

		kids := make([]string, 0, len(pubs))
		for kid := range pubs {
			kids = append(kids, kid)
		}
		sort.Strings(kids)

		doc := JWKS{Keys: make([]JWK, 0, len(pubs))}
		for _, kid := range kids {
			doc.Keys = append(doc.Keys, MarshalKey(pubs[kid], kid))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	})
}

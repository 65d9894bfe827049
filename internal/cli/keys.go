package cli

import (
	"fmt"
	"strings"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/crypto/algorithms/ed25519"
)

// keyFromSeed derives the signing key named by seed. The same seed always
// yields the same identity.
func keyFromSeed(seed string) (*ed25519.Keypair, error) {
	if seed == "" {
		return nil, fmt.Errorf("empty seed")
	}
	return ed25519.GenerateKeypair([]byte(seed))
}

func addressFromSeed(seed string) (string, error) {
	key, err := keyFromSeed(seed)
	if err != nil {
		return "", err
	}
	return addresscodec.AccountID(key.Public).String(), nil
}

// resolveAddress accepts a base58 address or an @seed reference.
func resolveAddress(s string) ([32]byte, error) {
	if strings.HasPrefix(s, "@") {
		resolved, err := resolveRef(s)
		if err != nil {
			return [32]byte{}, err
		}
		s = resolved
	}
	id, err := addresscodec.Decode(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("%q: %w", s, err)
	}
	return id, nil
}

// resolveRef expands one reference:
//
//	@seed              the identity derived from seed
//	@favorites:seed    the current favorites record of that identity
//	@favoritesV1:seed  its V1 favorites record
func resolveRef(ref string) (string, error) {
	name := strings.TrimPrefix(ref, "@")
	derive := func(owner [32]byte) [32]byte { return owner }

	if kind, seed, ok := strings.Cut(name, ":"); ok {
		switch kind {
		case "favorites":
			derive = func(owner [32]byte) [32]byte { return keylet.Favorites(owner).Key }
		case "favoritesV1":
			derive = func(owner [32]byte) [32]byte { return keylet.FavoritesV1(owner).Key }
		default:
			return "", fmt.Errorf("unknown reference kind %q in %s", kind, ref)
		}
		name = seed
	}

	key, err := keyFromSeed(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ref, err)
	}
	return addresscodec.AccountID(derive(key.Public)).String(), nil
}

// resolveRefs replaces every @reference string inside v.
func resolveRefs(v any) (any, error) {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, "@") {
			return resolveRef(t)
		}
		return t, nil
	case map[string]any:
		for k, item := range t {
			resolved, err := resolveRefs(item)
			if err != nil {
				return nil, err
			}
			t[k] = resolved
		}
		return t, nil
	case []any:
		for i, item := range t {
			resolved, err := resolveRefs(item)
			if err != nil {
				return nil, err
			}
			t[i] = resolved
		}
		return t, nil
	default:
		return v, nil
	}
}

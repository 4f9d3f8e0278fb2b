// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package access implements the share-token whitelist check that guards
// every request-path operation.
package access

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/metrics"
)

// ErrUnauthorized is returned for missing, unknown or inactive tokens.
var ErrUnauthorized = errors.New("invalid or inactive share token")

// Token is one whitelist entry.
type Token struct {
	Token  string
	Label  string
	Active bool
}

type entry struct {
	digest [blake2b.Size256]byte
	label  string
	active bool
}

// Guard verifies share tokens against a static whitelist.
//
// Raw tokens are not retained: each is stored as a keyed BLAKE2b-256 digest
// under a per-process random key, and lookups compare digests in constant
// time across the whole list. A Guard is immutable after New and safe for
// concurrent use.
type Guard struct {
	key     []byte
	entries []entry
}

// New builds a Guard from the given whitelist.
func New(tokens []Token) (*Guard, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("access: generate digest key: %w", err)
	}

	g := &Guard{key: key, entries: make([]entry, 0, len(tokens))}
	for i, t := range tokens {
		if t.Token == "" {
			return nil, fmt.Errorf("access: token %d (%q) is empty", i, t.Label)
		}
		g.entries = append(g.entries, entry{
			digest: g.digest(t.Token),
			label:  t.Label,
			active: t.Active,
		})
	}
	return g, nil
}

// FromConfig builds a Guard from the security.share_tokens configuration.
func FromConfig(tokens []config.ShareTokenConfig) (*Guard, error) {
	converted := make([]Token, len(tokens))
	for i, t := range tokens {
		converted[i] = Token{Token: t.Token, Label: t.Label, Active: t.Active}
	}
	return New(converted)
}

func (g *Guard) digest(token string) [blake2b.Size256]byte {
	h, err := blake2b.New256(g.key)
	if err != nil {
		// Only reachable with a key longer than 64 bytes.
		panic(err)
	}
	h.Write([]byte(token))

	var out [blake2b.Size256]byte
	copy(out[:], h.Sum(nil))
	return out
}

// match returns the entry for token, scanning every entry regardless of
// where (or whether) it matches.
func (g *Guard) match(token string) (entry, bool) {
	if token == "" {
		return entry{}, false
	}

	d := g.digest(token)
	var found entry
	matched := 0
	for _, e := range g.entries {
		if subtle.ConstantTimeCompare(d[:], e.digest[:]) == 1 {
			found = e
			matched = 1
		}
	}
	return found, matched == 1
}

// Verify returns nil iff token is whitelisted and active.
func (g *Guard) Verify(token string) error {
	e, ok := g.match(token)
	allowed := ok && e.active
	metrics.RecordShareTokenCheck(allowed)
	if !allowed {
		return ErrUnauthorized
	}
	return nil
}

// Label returns the label of a valid token for log context. The raw token
// must never be logged.
func (g *Guard) Label(token string) (string, bool) {
	e, ok := g.match(token)
	if !ok || !e.active {
		return "", false
	}
	return e.label, true
}

// ActiveCount returns the number of active whitelist entries.
func (g *Guard) ActiveCount() int {
	n := 0
	for _, e := range g.entries {
		if e.active {
			n++
		}
	}
	return n
}

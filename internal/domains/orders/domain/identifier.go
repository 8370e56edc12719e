package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// DefaultIdentifierPrefix is prepended to generated order identifiers.
const DefaultIdentifierPrefix = "DH"

const (
	suffixLength   = 9
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewIdentifier builds an order identifier of the form <prefix>-<epoch-millis>-<suffix>,
// e.g. DH-1699401234567-x7k2p9qa1. Payers copy it into the transfer narrative.
func NewIdentifier(prefix string, now time.Time) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultIdentifierPrefix
	}
	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate order suffix: %w", err)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix), nil
}

func randomSuffix(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	limit := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(suffixAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

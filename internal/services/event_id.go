package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EventIDLength is the number of hex characters kept from the digest.
const EventIDLength = 32

// EventID derives the idempotency key for an external event. The digest covers the
// transaction id followed by the decimal log index; the index is omitted when nil.
// Callers that mint their own transaction ids prefix them ("transfer:", "correction:")
// so they cannot run into on-chain hashes.
func EventID(externalTxID string, logIndex *int) (string, error) {
	if strings.TrimSpace(externalTxID) == "" {
		return "", fmt.Errorf("%w: external transaction id is required", ErrInvalidEntry)
	}

	input := externalTxID
	if logIndex != nil {
		if *logIndex < 0 {
			return "", fmt.Errorf("%w: log index must be non-negative", ErrInvalidEntry)
		}
		input += strconv.Itoa(*logIndex)
	}

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:EventIDLength], nil
}

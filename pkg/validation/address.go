package validation

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressHexLength is the length of a Core address in hex characters (22 bytes).
const AddressHexLength = 44

// ValidateAddress validates a blockchain address format
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	normalized := strings.TrimPrefix(addr, "0x")
	normalized = strings.TrimPrefix(normalized, "0X")

	if len(normalized) != AddressHexLength {
		return fmt.Errorf("invalid address length: expected %d characters (without 0x), got %d", AddressHexLength, len(normalized))
	}

	if _, err := hex.DecodeString(normalized); err != nil {
		return fmt.Errorf("invalid hex address: %w", err)
	}

	return nil
}

// NormalizeAddress converts an address to lowercase without 0x prefix.
// Every wallet key stored in the ledger goes through it.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	addr = strings.TrimPrefix(addr, "0x")
	addr = strings.TrimPrefix(addr, "0X")
	return strings.ToLower(addr)
}

// ValidateAndNormalizeAddress validates an address and returns its normalized form
func ValidateAndNormalizeAddress(addr string) (string, error) {
	if err := ValidateAddress(addr); err != nil {
		return "", err
	}
	return NormalizeAddress(addr), nil
}

// ShortAddress returns the last n characters of the normalized address.
func ShortAddress(addr string, n int) string {
	addr = NormalizeAddress(addr)
	if n <= 0 || len(addr) <= n {
		return addr
	}
	return addr[len(addr)-n:]
}

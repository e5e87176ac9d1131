package blockchain

import (
	"math"
	"math/big"
)

// TokenABI covers the metadata getters of a CBC-20 token.
const TokenABI = `[{"inputs":[],"name":"name","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}]`

// ScaleAmount converts a base-unit amount into token units.
func ScaleAmount(raw *big.Int, decimals int) float64 {
	if raw == nil {
		return 0
	}
	divisor := new(big.Float).SetFloat64(math.Pow10(decimals))
	amount, _ := big.NewFloat(0).Quo(new(big.Float).SetInt(raw), divisor).Float64()
	return amount
}

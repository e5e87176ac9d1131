package models

// Token describes the currency payouts are denominated in.
type Token struct {
	// Address is the token contract; empty for the native coin.
	Address string `json:"address"`
	// Name is the full name of the token
	Name string `json:"name"`
	// Symbol is the ticker shown in notifications (e.g., CORE, CTN)
	Symbol string `json:"symbol"`
	// Decimals scales raw amounts into token units
	Decimals int `json:"decimals"`
	// Network is the network the token is on (xcb, xab)
	Network string `json:"network"`
}

// NativeToken returns the Core coin with the configured decimals.
func NativeToken(network string, decimals int) *Token {
	return &Token{Name: "Core", Symbol: "CORE", Decimals: decimals, Network: network}
}

package validation

import (
	"strings"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	valid := "cb" + strings.Repeat("a1", 21)

	cases := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "plain", addr: valid},
		{name: "prefixed", addr: "0x" + valid},
		{name: "upper prefix", addr: "0X" + strings.ToUpper(valid)},
		{name: "empty", addr: "", wantErr: true},
		{name: "short", addr: "cb12", wantErr: true},
		{name: "not hex", addr: "zz" + strings.Repeat("a1", 21), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAddress(tc.addr)
			if tc.wantErr && err == nil {
				t.Fatalf("ValidateAddress(%q) = nil, want error", tc.addr)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("ValidateAddress(%q) = %v, want nil", tc.addr, err)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress("  0xCB00AAbb ")
	if got != "cb00aabb" {
		t.Fatalf("NormalizeAddress = %q, want %q", got, "cb00aabb")
	}
}

func TestShortAddress(t *testing.T) {
	if got := ShortAddress("0xCB0012345678", 6); got != "345678" {
		t.Fatalf("ShortAddress = %q, want %q", got, "345678")
	}
	if got := ShortAddress("ab", 6); got != "ab" {
		t.Fatalf("ShortAddress = %q, want %q", got, "ab")
	}
}

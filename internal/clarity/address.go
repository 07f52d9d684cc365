package clarity

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address versions used by Stacks standard principals.
const (
	VersionMainnetSingleSig byte = 22
	VersionMainnetMultiSig  byte = 20
	VersionTestnetSingleSig byte = 26
	VersionTestnetMultiSig  byte = 21
)

// Principal identifies an account (standard principal) or a contract
// deployed by that account (contract principal).
type Principal struct {
	Version  byte
	Hash160  [20]byte
	Contract string
}

// Address returns the c32check account address, without the contract name.
func (p Principal) Address() string {
	return EncodeAddress(p.Version, p.Hash160)
}

// String renders the principal as "ADDRESS" or "ADDRESS.contract".
func (p Principal) String() string {
	if p.Contract == "" {
		return p.Address()
	}
	return p.Address() + "." + p.Contract
}

// Mainnet reports whether the address version belongs to mainnet.
func (p Principal) Mainnet() bool {
	return p.Version == VersionMainnetSingleSig || p.Version == VersionMainnetMultiSig
}

// EncodeAddress builds a c32check address: "S", the version character, then
// c32(hash160 || checksum).
func EncodeAddress(version byte, hash [20]byte) string {
	if int(version) >= len(c32Alphabet) {
		return ""
	}
	payload := make([]byte, 0, 24)
	payload = append(payload, hash[:]...)
	payload = append(payload, checksum(version, hash[:])...)
	return "S" + string(c32Alphabet[version]) + c32Encode(payload)
}

// ParseAddress decodes "ADDRESS" or "ADDRESS.contract" and verifies the checksum.
func ParseAddress(s string) (Principal, error) {
	trimmed := strings.TrimSpace(s)
	account, contract, _ := strings.Cut(trimmed, ".")
	if len(account) < 3 || (account[0] != 'S' && account[0] != 's') {
		return Principal{}, fmt.Errorf("clarity: address %q must start with S", s)
	}
	version := strings.IndexByte(c32Alphabet, normalizeC32(account[1]))
	if version < 0 {
		return Principal{}, fmt.Errorf("clarity: address %q has invalid version", s)
	}
	data, err := c32Decode(account[2:])
	if err != nil {
		return Principal{}, fmt.Errorf("clarity: address %q: %w", s, err)
	}
	if len(data) != 24 {
		return Principal{}, fmt.Errorf("clarity: address %q decodes to %d bytes", s, len(data))
	}
	want := checksum(byte(version), data[:20])
	if !bytes.Equal(want, data[20:]) {
		return Principal{}, fmt.Errorf("clarity: address %q has bad checksum", s)
	}
	p := Principal{Version: byte(version), Contract: contract}
	copy(p.Hash160[:], data[:20])
	return p, nil
}

func checksum(version byte, data []byte) []byte {
	first := sha256.Sum256(append([]byte{version}, data...))
	second := sha256.Sum256(first[:])
	return second[:4]
}

// c32Encode writes b as a base-32 number, one leading '0' per leading zero byte.
func c32Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}
	n := new(big.Int).SetBytes(b)
	base := big.NewInt(32)
	mod := new(big.Int)
	var digits []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return strings.Repeat("0", zeros) + string(digits)
}

func c32Decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && normalizeC32(s[zeros]) == '0' {
		zeros++
	}
	n := new(big.Int)
	base := big.NewInt(32)
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(c32Alphabet, normalizeC32(s[i]))
		if idx < 0 {
			return nil, fmt.Errorf("invalid c32 character %q", s[i])
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(idx)))
	}
	return append(make([]byte, zeros), n.Bytes()...), nil
}

// normalizeC32 applies the c32 aliases: lower case, O to 0, I and L to 1.
func normalizeC32(c byte) byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	switch c {
	case 'O':
		return '0'
	case 'I', 'L':
		return '1'
	}
	return c
}

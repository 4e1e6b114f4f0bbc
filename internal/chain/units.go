package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

const etherDecimals = 18

var weiPerEther = big.NewInt(params.Ether)

// FromWei converts a wei amount to an exact ether decimal string with
// trailing zeros trimmed: 1500000000000000000 → "1.5".
func FromWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)

	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	out := whole.String()
	if frac.Sign() != 0 {
		fs := frac.String()
		fs = strings.Repeat("0", etherDecimals-len(fs)) + fs
		out += "." + strings.TrimRight(fs, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ToWei parses an ether decimal string ("1", "0.5") into wei. More than 18
// fractional digits is an error rather than a silent truncation.
func ToWei(ether string) (*big.Int, error) {
	s := strings.TrimSpace(ether)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", ether)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("amount %q has more than %d decimals", ether, etherDecimals)
	}
	frac += strings.Repeat("0", etherDecimals-len(frac))

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", ether)
	}
	return n, nil
}

// MustToWei is ToWei for compile-time constants.
func MustToWei(ether string) *big.Int {
	n, err := ToWei(ether)
	if err != nil {
		panic(err)
	}
	return n
}

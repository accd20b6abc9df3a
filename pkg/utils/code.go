package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomCode 生成 n 位大写字母数字随机串
func RandomCode(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	base := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// VoucherCode 生成 FOX-<商铺名前6个字母>-<6位随机串>
func VoucherCode(shopName string) (string, error) {
	var prefix strings.Builder
	for _, r := range strings.ToUpper(shopName) {
		if r >= 'A' && r <= 'Z' {
			prefix.WriteRune(r)
			if prefix.Len() == 6 {
				break
			}
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("SHOP")
	}

	suffix, err := RandomCode(6)
	if err != nil {
		return "", err
	}
	return "FOX-" + prefix.String() + "-" + suffix, nil
}

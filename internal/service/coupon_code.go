package service

import (
	"math/rand"
	"strings"
)

// couponCodeAlphabet не содержит символов 0, O, 1, I: код вводится руками
// и похожие знаки недопустимы.
const couponCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const couponCodeSuffixLength = 8

// generateCouponCode возвращает код вида {prefix}{N случайных символов алфавита}.
func generateCouponCode(prefix string) string {
	var sb strings.Builder
	sb.Grow(len(prefix) + couponCodeSuffixLength)
	sb.WriteString(prefix)
	for i := 0; i < couponCodeSuffixLength; i++ {
		sb.WriteByte(couponCodeAlphabet[rand.Intn(len(couponCodeAlphabet))]) //nolint:gosec
	}
	return sb.String()
}

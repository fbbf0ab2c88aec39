package validator

import (
	"regexp"
	"strings"
)

const MaxSkuCodeLen = 100

// 一覧ルート（/api/inventory/all）と衝突するので使えない
const reservedSkuCode = "all"

// 英数字と _ - . のみ
var skuCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

// SKUコードの形式チェック（前後空白は呼び出し側で落とす）
func ValidSkuCode(s string) bool {
	if s == "" || len(s) > MaxSkuCodeLen {
		return false
	}
	if strings.EqualFold(s, reservedSkuCode) {
		return false
	}
	return skuCodePattern.MatchString(s)
}

// 前後空白を落としてから検証する
func NormalizeSkuCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, ValidSkuCode(s)
}

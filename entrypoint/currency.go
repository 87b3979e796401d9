package entrypoint

// ISO 4217 numeric currency codes this Entry Point recognizes for the
// "one unit of currency" preprocessing check (spec.md §4.4 step 1) and
// for the unsupported-currency reject at the end of preprocessing.
const (
	currencyUSD = 840
	currencyEUR = 978
)

func currencyCode(c [2]byte) uint16 {
	return uint16(c[0])<<8 | uint16(c[1])
}

func supportedCurrency(c [2]byte) bool {
	switch currencyCode(c) {
	case currencyUSD, currencyEUR:
		return true
	default:
		return false
	}
}

// oneUnit returns the minor-unit amount equal to "one unit" of currency
// c (100 for both USD and EUR).
func oneUnit(c [2]byte) uint64 {
	return 100
}

package crown

import (
	"strconv"
	"strings"
)

// FormatPrice renders micro-units as whole units with one decimal place,
// rounding half up: 1000000 is "1.0", 2500000 is "2.5", 1050000 is "1.1".
// It is a display helper only; submitted amounts always use the integer.
func FormatPrice(micro uint64) string {
	const tenth = MicroPerUnit / 10
	tenths := micro / tenth
	if micro%tenth >= tenth/2 {
		tenths++
	}
	return strconv.FormatUint(tenths/10, 10) + "." + strconv.FormatUint(tenths%10, 10)
}

// TruncateAddress shortens an account identifier to its first six and last
// four characters.
func TruncateAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) <= 13 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

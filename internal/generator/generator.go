// Package generator computes decimal digits of pi.
package generator

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// guardDigits absorbs truncation error from the fixed-point arctangent series.
const guardDigits = 10

// PiDigits returns the first n digits of pi after the decimal point using
// Machin's formula: pi = 16*atan(1/5) - 4*atan(1/239).
func PiDigits(n int) string {
	if n <= 0 {
		return ""
	}
	unity := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n+guardDigits)), nil)
	a := arctanInv(5, unity)
	b := arctanInv(239, unity)

	pi := new(big.Int).Mul(a, big.NewInt(16))
	pi.Sub(pi, new(big.Int).Mul(b, big.NewInt(4)))

	s := pi.String()
	// s holds "3" followed by n+guardDigits fractional digits.
	return s[1 : n+1]
}

// arctanInv computes atan(1/x) scaled by unity.
func arctanInv(x int64, unity *big.Int) *big.Int {
	bx := big.NewInt(x)
	x2 := new(big.Int).Mul(bx, bx)
	term := new(big.Int).Quo(unity, bx)
	sum := new(big.Int).Set(term)
	q := new(big.Int)
	for k := int64(1); ; k++ {
		term.Quo(term, x2)
		if term.Sign() == 0 {
			break
		}
		q.Quo(term, big.NewInt(2*k+1))
		if k%2 == 1 {
			sum.Sub(sum, q)
		} else {
			sum.Add(sum, q)
		}
	}
	return sum
}

// WriteCorpus writes "3." followed by n digits, wrapped at lineWidth digits per
// line (0 disables wrapping).
func WriteCorpus(w io.Writer, n, lineWidth int) error {
	if n <= 0 {
		return fmt.Errorf("digit count must be > 0")
	}
	digits := PiDigits(n)
	writer := bufio.NewWriter(w)
	if _, err := writer.WriteString("3."); err != nil {
		return err
	}
	if lineWidth <= 0 {
		if _, err := writer.WriteString(digits); err != nil {
			return err
		}
	} else {
		if _, err := writer.WriteString("\n"); err != nil {
			return err
		}
		for start := 0; start < len(digits); start += lineWidth {
			end := min(start+lineWidth, len(digits))
			if _, err := writer.WriteString(digits[start:end]); err != nil {
				return err
			}
			if _, err := writer.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	return writer.Flush()
}

// IsDigits reports whether s is non-empty and consists solely of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}

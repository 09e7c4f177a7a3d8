package orders

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

// orderNumberAlphabet omits I, L, O, 0 and 1.
const orderNumberAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const orderNumberSuffixLen = 6

// NewOrderNumber returns GM-YYYYMMDD-XXXXXX for the UTC date of now.
func NewOrderNumber(now time.Time) (string, error) {
	return newOrderNumber(now, rand.Reader)
}

func newOrderNumber(now time.Time, src io.Reader) (string, error) {
	// 248 is the largest multiple of the alphabet size below 256.
	const limit = byte(len(orderNumberAlphabet) * (256 / len(orderNumberAlphabet)))

	suffix := make([]byte, 0, orderNumberSuffixLen)
	buf := make([]byte, orderNumberSuffixLen*2)
	for len(suffix) < orderNumberSuffixLen {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			suffix = append(suffix, orderNumberAlphabet[int(b)%len(orderNumberAlphabet)])
			if len(suffix) == orderNumberSuffixLen {
				break
			}
		}
	}
	return fmt.Sprintf("GM-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

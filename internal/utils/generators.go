package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateBookingReference returns a human-readable reference like
// "BK1735689600X7Q2P", unix timestamp plus five random characters.
func GenerateBookingReference() string {
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
		if err != nil {
			n = big.NewInt(time.Now().UnixNano() % int64(len(referenceAlphabet)))
		}
		sb.WriteByte(referenceAlphabet[n.Int64()])
	}
	return fmt.Sprintf("BK%d%s", time.Now().Unix(), sb.String())
}

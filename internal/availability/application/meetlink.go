package application

import (
	"math/rand"
	"strings"
)

const meetLinkAlphabet = "abcdefghijklmnopqrstuvwxyz"

// GenerateMeetingLink fabricates a join link in the usual xxx-xxxx-xxx
// shape. Providers that mint their own conference links take precedence;
// this is the fallback when the provider returns none.
func GenerateMeetingLink() string {
	var b strings.Builder
	b.WriteString("https://meet.hiresync.dev/")
	for i, n := range []int{3, 4, 3} {
		if i > 0 {
			b.WriteByte('-')
		}
		for j := 0; j < n; j++ {
			b.WriteByte(meetLinkAlphabet[rand.Intn(len(meetLinkAlphabet))])
		}
	}
	return b.String()
}

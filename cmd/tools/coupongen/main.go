package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/noah-isme/backend-vlyx/internal/coupon"
)

const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

func main() {
	percent := flag.Int("percent", -1, "discount percent to encode (0-99)")
	prefix := flag.String("prefix", "", "coupon prefix; random letters when empty")
	flag.Parse()

	suffix, err := coupon.Encode(*percent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coupongen: %v\n", err)
		os.Exit(2)
	}
	head := strings.ToUpper(strings.TrimSpace(*prefix))
	if head == "" {
		head = randomLetters(4)
	}
	code := head + suffix
	if coupon.IsNamed(code) {
		fmt.Fprintf(os.Stderr, "coupongen: %s collides with a named code\n", code)
		os.Exit(1)
	}
	res := coupon.Resolve(code)
	if !res.Valid || res.DiscountPercent != *percent {
		fmt.Fprintf(os.Stderr, "coupongen: %s does not round-trip\n", code)
		os.Exit(1)
	}
	fmt.Println(code)
}

func randomLetters(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}

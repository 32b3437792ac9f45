package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/noah-isme/backend-vlyx/internal/app"
)

// Reads a token from stdin and prints the ADMIN_TOKEN_HASH value for it.
func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "admintoken: read token: %v\n", err)
		os.Exit(1)
	}
	hash, err := app.HashAdminToken(strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
}

// Command hash-password prints a bcrypt hash for use in APP_USERS.
package main

import (
	"fmt"
	"os"

	"maintex-gateway/internal/pkg/password"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, `Usage: hash-password "YourPasswordHere"`)
		os.Exit(1)
	}

	hash, err := password.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/champa/scrapbook/pkg/pwdhash"
	"golang.org/x/term"
)

// Takes a password, and prints out the hash spec to use for CHAMPA_PASSWORD_HASH.
// For example:
// CHAMPA_PASSWORD_HASH="$(pwdhash -p 'secret phrase')" scrapbook
// Without -p, the password is read from the terminal, so that it stays out of your shell history.

func main() {
	parser := argparse.NewParser("pwdhash", "Print the scrypt hash spec of a password")
	password := parser.String("p", "password", &argparse.Options{Help: "Password to hash. If omitted, you will be prompted for it", Default: ""})
	salt := parser.String("s", "salt", &argparse.Options{Help: "Use this salt instead of a random one (for reproducing an existing hash)", Default: ""})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if *password == "" {
		*password, err = promptPassword()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	var spec string
	if *salt != "" {
		spec, err = pwdhash.HashPasswordWithSalt(*password, *salt)
	} else {
		spec, err = pwdhash.HashPassword(*password)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%v\n", spec)
}

// The prompt goes to stderr, so that stdout holds nothing but the spec
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("No password given, and stdin is not a terminal. Use -p")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Again: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("Passwords do not match")
	}
	pw := strings.TrimSpace(string(first))
	if pw == "" {
		return "", fmt.Errorf("Empty password")
	}
	return pw, nil
}

package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptCredentials asks for an API key and secret on the given input.
// Either value may also arrive preset; only the missing ones are prompted.
func PromptCredentials(in *bufio.Scanner, out io.Writer, key, secret string) (string, string, error) {
	var err error
	if key == "" {
		key, err = promptNonEmpty(in, out, "Binance API key: ")
		if err != nil {
			return "", "", err
		}
	}
	if secret == "" {
		secret, err = promptNonEmpty(in, out, "Binance API secret: ")
		if err != nil {
			return "", "", err
		}
	}
	return key, secret, nil
}

func promptNonEmpty(in *bufio.Scanner, out io.Writer, prompt string) (string, error) {
	for {
		fmt.Fprint(out, prompt)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return "", err
			}
			return "", errors.New("input closed before credentials were provided")
		}
		value := strings.TrimSpace(in.Text())
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(out, "A value is required.")
	}
}

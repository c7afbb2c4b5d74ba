// Package repl runs the interactive terminal menu over a link store.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Links is the pair of operations the menu drives.
type Links interface {
	Shorten(longURL string) string
	Expand(token string) (string, error)
}

// Run reads menu choices from in until the user exits or input ends.
func Run(in io.Reader, out io.Writer, links Links) error {
	scanner := bufio.NewScanner(in)

	prompt := func(text string) (string, bool) {
		fmt.Fprint(out, text)

		if !scanner.Scan() {
			return "", false
		}

		return scanner.Text(), true
	}

	for {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "1. Shorten a URL")
		fmt.Fprintln(out, "2. Expand a URL")
		fmt.Fprintln(out, "3. Exit")

		choice, ok := prompt("Choose an option: ")
		if !ok {
			return scanner.Err()
		}

		switch strings.TrimSpace(choice) {
		case "1":
			longURL, ok := prompt("Enter the long URL: ")
			if !ok {
				return scanner.Err()
			}

			fmt.Fprintln(out, "Shortened URL: "+links.Shorten(longURL))
		case "2":
			token, ok := prompt("Enter the short URL: ")
			if !ok {
				return scanner.Err()
			}

			longURL, err := links.Expand(token)
			if err != nil {
				fmt.Fprintln(out, "Error: "+sentence(err.Error()))

				continue
			}

			fmt.Fprintln(out, "Original URL: "+longURL)
		case "3":
			fmt.Fprintln(out, "Exiting...")

			return nil
		default:
			fmt.Fprintln(out, "Invalid option. Please try again.")
		}
	}
}

// sentence upper-cases the first letter of a Go error message for display.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}

	return string(unicode.ToUpper(r)) + msg[size:]
}

package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var ErrPasswordMismatch = errors.New("passwords do not match")

// GetPassword prints prompt to w and reads a password from fd without echo.
// A newline is printed after the read to keep the terminal tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, fd int, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetNewPassword asks for a password twice and fails when the entries differ
// or are empty.
func GetNewPassword(w io.Writer, fd int) ([]byte, error) {
	first, err := GetPassword(w, fd, "Enter password: ")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, errors.New("empty password")
	}

	second, err := GetPassword(w, fd, "Repeat password: ")
	if err != nil {
		wipe(first)
		return nil, err
	}
	defer wipe(second)

	if !bytes.Equal(first, second) {
		wipe(first)
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

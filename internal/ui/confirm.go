package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prompts on out and reads a yes/no answer from in. Anything other
// than y/yes counts as no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	return ask(in, out, StyleWarning.Render(prompt))
}

// ConfirmDanger is like Confirm but styled with the error color (for
// role revocation, renouncing and ownership transfer).
func ConfirmDanger(in io.Reader, out io.Writer, prompt string) bool {
	return ask(in, out, StyleError.Render("⚠ "+prompt))
}

func ask(in io.Reader, out io.Writer, styled string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", styled)
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

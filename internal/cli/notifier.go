package cli

import (
	"fmt"
	"io"
)

// TerminalNotifier is the CLI's stand-in for the mobile alert dialog: the
// message goes to the terminal, and a navigation redirect becomes a hint
// about which command to run next.
type TerminalNotifier struct {
	Out io.Writer
}

// Alert prints the message.
func (n TerminalNotifier) Alert(message string) {
	fmt.Fprintf(n.Out, "error: %s\n", message)
}

// Navigate maps known app routes onto CLI follow-up hints.
func (n TerminalNotifier) Navigate(path string) {
	switch path {
	case "/login":
		fmt.Fprintln(n.Out, "run 'habitkit login' to sign in again")
	default:
		fmt.Fprintf(n.Out, "see: %s\n", path)
	}
}

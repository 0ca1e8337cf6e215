package command

import (
	"errors"
	"strings"
)

// Command is a single tmux control-mode command.
type Command interface {
	// WireFormat returns the command line to transmit, without the
	// trailing newline. The transport appends the newline framing.
	WireFormat() []byte

	// BuildResponse returns a new, empty receiver for this command's
	// output. It is called once per submission.
	BuildResponse() Response
}

// Response receives the text of a command's output block.
type Response interface {
	// Consume populates the response from the block text. Lines are joined
	// with "\n" and there is no trailing newline.
	Consume(text string)
}

// ErrInvalidCommand indicates a command line that cannot be framed as a
// single control-mode line.
var ErrInvalidCommand = errors.New("invalid command line")

// validateLine reports whether line can be sent as one control-mode command.
func validateLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return errors.Join(ErrInvalidCommand, errors.New("empty command"))
	}

	if strings.ContainsAny(line, "\r\n") {
		return errors.Join(ErrInvalidCommand, errors.New("command contains a line break"))
	}

	return nil
}

// quote wraps s in single quotes for the tmux command parser. Single quotes
// inside s are closed, escaped and reopened.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

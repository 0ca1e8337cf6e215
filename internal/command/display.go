package command

import "strings"

// DisplayMessage expands a tmux format string via display-message -p.
type DisplayMessage struct {
	format string
}

// DisplayMessageResponse holds the expanded format.
type DisplayMessageResponse struct {
	Text string
}

var _ Command = (*DisplayMessage)(nil)

// NewDisplayMessage returns a command that expands format, for example
// "#{session_name}:#{window_index}".
func NewDisplayMessage(format string) (*DisplayMessage, error) {
	if err := validateLine(format); err != nil {
		return nil, err
	}

	return &DisplayMessage{format: format}, nil
}

// WireFormat implements Command.
func (c *DisplayMessage) WireFormat() []byte {
	return []byte("display-message -p " + quote(c.format))
}

// BuildResponse implements Command.
func (c *DisplayMessage) BuildResponse() Response {
	return &DisplayMessageResponse{}
}

// Consume implements Response.
func (r *DisplayMessageResponse) Consume(text string) {
	r.Text = strings.TrimRight(text, "\n")
}

package command

// Raw is an arbitrary tmux command line. The response is the output text
// unchanged.
type Raw struct {
	line string
}

// TextResponse holds the unparsed output of a command.
type TextResponse struct {
	Text string
}

var _ Command = (*Raw)(nil)

// NewRaw validates line and wraps it as a command. The line must be
// non-empty and must not contain a line break.
func NewRaw(line string) (*Raw, error) {
	if err := validateLine(line); err != nil {
		return nil, err
	}

	return &Raw{line: line}, nil
}

// Line returns the command line as given.
func (c *Raw) Line() string {
	return c.line
}

// WireFormat implements Command.
func (c *Raw) WireFormat() []byte {
	return []byte(c.line)
}

// BuildResponse implements Command.
func (c *Raw) BuildResponse() Response {
	return &TextResponse{}
}

// Consume implements Response.
func (r *TextResponse) Consume(text string) {
	r.Text = text
}

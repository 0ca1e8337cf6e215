package command

// Info asks tmux to describe the server and the terminal of the control
// client. Its response is the output text unchanged.
type Info struct{}

// InfoResponse holds the output of the info command.
type InfoResponse struct {
	Content string
}

// Compile-time verification that Info implements Command.
var _ Command = Info{}

// NewInfo returns the info command.
func NewInfo() Info {
	return Info{}
}

// WireFormat implements Command.
func (Info) WireFormat() []byte {
	return []byte("info")
}

// BuildResponse implements Command.
func (Info) BuildResponse() Response {
	return &InfoResponse{}
}

// Consume implements Response.
func (r *InfoResponse) Consume(text string) {
	r.Content = text
}

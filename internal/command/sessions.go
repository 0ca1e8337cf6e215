package command

import (
	"strconv"
	"strings"
)

// listSessionsFormat puts the session name last because it is the only
// field that may contain spaces.
const listSessionsFormat = "#{session_id} #{session_windows} #{session_attached} #{session_name}"

// SessionInfo describes one tmux session.
type SessionInfo struct {
	ID       string
	Name     string
	Windows  int
	Attached int
}

// ListSessions lists the sessions on the server.
type ListSessions struct{}

// ListSessionsResponse holds the parsed session list. Lines that do not
// match the requested format are kept in Unparsed.
type ListSessionsResponse struct {
	Sessions []SessionInfo
	Unparsed []string
}

var _ Command = ListSessions{}

// NewListSessions returns the list-sessions command.
func NewListSessions() ListSessions {
	return ListSessions{}
}

// WireFormat implements Command.
func (ListSessions) WireFormat() []byte {
	return []byte("list-sessions -F " + quote(listSessionsFormat))
}

// BuildResponse implements Command.
func (ListSessions) BuildResponse() Response {
	return &ListSessionsResponse{}
}

// Consume implements Response.
func (r *ListSessionsResponse) Consume(text string) {
	r.Sessions = nil
	r.Unparsed = nil

	if text == "" {
		return
	}

	for line := range strings.SplitSeq(text, "\n") {
		info, ok := parseSessionLine(line)
		if !ok {
			r.Unparsed = append(r.Unparsed, line)

			continue
		}

		r.Sessions = append(r.Sessions, info)
	}
}

func parseSessionLine(line string) (SessionInfo, bool) {
	fields := strings.SplitN(line, " ", 4)
	if len(fields) != 4 || !strings.HasPrefix(fields[0], "$") {
		return SessionInfo{}, false
	}

	windows, err := strconv.Atoi(fields[1])
	if err != nil {
		return SessionInfo{}, false
	}

	attached, err := strconv.Atoi(fields[2])
	if err != nil {
		return SessionInfo{}, false
	}

	return SessionInfo{
		ID:       fields[0],
		Name:     fields[3],
		Windows:  windows,
		Attached: attached,
	}, true
}

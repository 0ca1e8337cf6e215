package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

// Stanza keywords recognized while no output block is open.
const (
	keywordBegin             = "begin"
	keywordExit              = "exit"
	keywordLayoutChange      = "layout-change"
	keywordOutput            = "output"
	keywordSessionChanged    = "session-changed"
	keywordSessionRenamed    = "session-renamed"
	keywordSessionsChanged   = "sessions-changed"
	keywordUnlinkedWindowAdd = "unlinked-window-add"
	keywordWindowAdd         = "window-add"
	keywordWindowClose       = "window-close"
	keywordWindowRenamed     = "window-renamed"
)

// Terminator keywords recognized while an output block is open.
const (
	keywordEnd   = "end"
	keywordError = "error"
)

var (
	// notificationPattern matches %<keyword> followed by whitespace or the end of the line.
	notificationPattern = regexp.MustCompile(`^%(` + strings.Join([]string{
		keywordBegin,
		keywordExit,
		keywordLayoutChange,
		keywordOutput,
		keywordSessionChanged,
		keywordSessionRenamed,
		keywordSessionsChanged,
		keywordUnlinkedWindowAdd,
		keywordWindowAdd,
		keywordWindowClose,
		keywordWindowRenamed,
	}, "|") + `)(?:\s+(.*))?$`)

	terminatorPattern = regexp.MustCompile(`^%(` + keywordEnd + `|` + keywordError + `)(?:\s+(.*))?$`)
)

// stanza is a recognized control-mode line.
type stanza struct {
	keyword string
	args    string
}

// matchNotification recognizes a notification stanza. Unrecognized lines
// report ok=false.
func matchNotification(line string) (stanza, bool) {
	return match(notificationPattern, line)
}

// matchTerminator recognizes an %end or %error line.
func matchTerminator(line string) (stanza, bool) {
	return match(terminatorPattern, line)
}

func match(pattern *regexp.Regexp, line string) (stanza, bool) {
	m := pattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
	if m == nil {
		return stanza{}, false
	}

	return stanza{keyword: m[1], args: m[2]}, true
}

// blockArgs holds the arguments of a %begin, %end or %error line. Each
// field is positional and optional.
type blockArgs struct {
	timestamp string
	seq       uint64
	hasSeq    bool
	flags     string
}

// maxBlockArgs is the number of positional arguments a block line carries:
// timestamp, sequence number, flags.
const maxBlockArgs = 3

// parseBlockArgs parses the whitespace-separated arguments of a block
// delimiter. It returns a reason when the arguments do not fit the grammar.
func parseBlockArgs(args string) (blockArgs, string) {
	fields := strings.Fields(args)
	if len(fields) > maxBlockArgs {
		return blockArgs{}, "too many arguments"
	}

	var parsed blockArgs

	if len(fields) > 0 {
		parsed.timestamp = fields[0]
	}

	if len(fields) > 1 {
		seq, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return blockArgs{}, "sequence number " + strconv.Quote(fields[1]) + " is not an unsigned integer"
		}

		parsed.seq = seq
		parsed.hasSeq = true
	}

	if len(fields) > 2 {
		parsed.flags = fields[2]
	}

	return parsed, ""
}

package protocol

import "github.com/wagiedev/tmux-control-go/internal/command"

// Submission is a command waiting for the Writer, paired with the reply its
// caller holds.
type Submission struct {
	Command command.Command
	Reply   *Reply
}

// Record correlates a transmitted command with the caller waiting for its
// output. The Writer creates it before transmitting; the Reader consumes it
// when the block with the same sequence number completes.
type Record struct {
	Seq      uint64
	response command.Response
	reply    *Reply
}

// rawBlock is a completed output block awaiting its Record.
type rawBlock struct {
	seq    uint64
	text   string
	failed bool
}

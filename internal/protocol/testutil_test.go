package protocol

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wagiedev/tmux-control-go/internal/command"
)

// echoCommand is a test command whose response records the block text.
type echoCommand struct {
	wire string
}

func (c echoCommand) WireFormat() []byte { return []byte(c.wire) }

func (c echoCommand) BuildResponse() command.Response { return &command.TextResponse{} }

// pushRecord enqueues a Record for seq as the Writer would and returns its reply.
func pushRecord(q *Queue[Record], seq uint64) *Reply {
	reply := NewReply()
	reply.seq.Store(seq)

	_ = q.Push(Record{
		Seq:      seq,
		response: &command.TextResponse{},
		reply:    reply,
	})

	return reply
}

// recordingSink captures transmitted lines.
type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	err    error
	onSend func(data []byte)
}

func (s *recordingSink) SendLine(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onSend != nil {
		s.onSend(data)
	}

	if s.err != nil {
		return s.err
	}

	s.lines = append(s.lines, string(data))

	return nil
}

func (s *recordingSink) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.lines...)
}

// fakeTmux answers every line it receives with a well-formed output block,
// numbering blocks in arrival order the way tmux does.
type fakeTmux struct {
	mu      sync.Mutex
	n       uint64
	lines   chan string
	respond func(n uint64, wire string) []string
}

func newFakeTmux() *fakeTmux {
	return &fakeTmux{
		lines: make(chan string, 1024),
		respond: func(n uint64, wire string) []string {
			return []string{
				fmt.Sprintf("%%begin 1700000000 %d 1", n),
				"out:" + wire,
				fmt.Sprintf("%%end 1700000000 %d 1", n),
			}
		},
	}
}

func (f *fakeTmux) SendLine(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++

	for _, line := range f.respond(f.n, strings.TrimSuffix(string(data), "\n")) {
		f.lines <- line
	}

	return nil
}

func (f *fakeTmux) emit(lines ...string) {
	for _, line := range lines {
		f.lines <- line
	}
}

package consent

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"mic-recorder/internal/domain"
)

// TerminalPrompt asks the person at the terminal before each capture.
// Without a terminal nobody can answer, so access is denied.
//
// A single reader owns the input for the life of the prompt. Requests take
// keys from it, so a request that gave up waiting does not swallow the
// answer meant for the next one.
type TerminalPrompt struct {
	in         *os.File
	out        io.Writer
	isTerminal func(fd uintptr) bool

	startReader sync.Once
	keys        chan byte
	readerDone  chan struct{}
	readErr     error

	mu sync.Mutex
}

func NewTerminalPrompt(in *os.File, out io.Writer) *TerminalPrompt {
	return &TerminalPrompt{
		in:         in,
		out:        out,
		isTerminal: isatty.IsTerminal,
		keys:       make(chan byte, 64),
		readerDone: make(chan struct{}),
	}
}

func (p *TerminalPrompt) Request(ctx context.Context, device string) error {
	// One question at a time on a shared terminal.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isTerminal(p.in.Fd()) {
		fmt.Fprintf(p.out, "Allow access to the %s? ([y]es/[n]o): \n", device)
		return domain.NewCaptureError(domain.KindPermissionDenied, fmt.Errorf("%s: no terminal to ask: %w", device, errDenied))
	}

	p.startReader.Do(func() { go p.read() })
	p.discardPending()

	fmt.Fprintf(p.out, "Allow access to the %s? ([y]es/[n]o): ", device)

	answer, err := p.readAnswer(ctx)
	if err != nil {
		return err
	}

	switch answer {
	case 'y', 'Y':
		fmt.Fprintln(p.out, "yes")
		return nil
	case 3: // Ctrl+C
		fmt.Fprintln(p.out)
		return domain.NewCaptureError(domain.KindCanceled, fmt.Errorf("%s: prompt interrupted", device))
	default:
		fmt.Fprintln(p.out, "no")
		return domain.NewCaptureError(domain.KindPermissionDenied, fmt.Errorf("%s: %w", device, errDenied))
	}
}

// read forwards every byte from the input until it fails.
func (p *TerminalPrompt) read() {
	defer close(p.readerDone)

	buf := make([]byte, 1)
	for {
		if _, err := p.in.Read(buf); err != nil {
			p.readErr = err
			return
		}
		select {
		case p.keys <- buf[0]:
		default:
			// Nobody is asking and the backlog is full.
		}
	}
}

// discardPending drops keys typed before the question was asked.
func (p *TerminalPrompt) discardPending() {
	for {
		select {
		case <-p.keys:
		default:
			return
		}
	}
}

// readAnswer waits for the first meaningful key. The terminal is switched to
// raw mode for the wait so a single keypress answers; when that is not
// possible the answer is the first character of the line and an empty line
// means no.
func (p *TerminalPrompt) readAnswer(ctx context.Context) (byte, error) {
	fd := int(p.in.Fd())
	raw := false
	if oldState, err := term.MakeRaw(fd); err == nil {
		raw = true
		defer term.Restore(fd, oldState)
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return 0, ctx.Err()
		case b := <-p.keys:
			switch b {
			case '\r', '\n':
				if !raw {
					return 'n', nil
				}
			case ' ', '\t':
			default:
				return b, nil
			}
		case <-p.readerDone:
			// Keys read before the failure are still answers.
			select {
			case b := <-p.keys:
				if b != '\r' && b != '\n' && b != ' ' && b != '\t' {
					return b, nil
				}
				continue
			default:
			}
			return 0, domain.NewCaptureError(domain.KindPermissionDenied, fmt.Errorf("reading answer: %w", p.readErr))
		}
	}
}

package supervisor

import (
	"bufio"
	"errors"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
)

const (
	// initialLineBuf is the starting scanner buffer per stream.
	initialLineBuf = 64 * 1024

	// maxLineBytes caps a single output line; longer lines fail the scan.
	maxLineBytes = 1024 * 1024
)

// pump drains one running child's stdout and stderr concurrently, forwards
// every line to the sink, and finalizes the run once both streams hit EOF
// and the process has reported its exit code. It is the sole writer of
// terminal state.
type pump struct {
	reg    *Registry
	run    *run
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// loop runs in its own goroutine, one per started script.
func (p *pump) loop() {
	defer p.reg.wg.Done()

	var g errgroup.Group
	g.Go(func() error {
		return p.drain(p.stdout, p.run.stdout, SeverityInfo)
	})
	g.Go(func() error {
		return p.drain(p.stderr, p.run.stderr, SeverityWarn)
	})
	readErr := g.Wait()

	// Both streams are at EOF; reap the process for its exit code.
	waitErr := p.run.cmd.Wait()
	exitCode := exitCodeFromWait(waitErr)

	if readErr != nil {
		p.reg.logger.Error("stream_read_error",
			"script_id", p.run.scriptID,
			"pid", p.run.pid,
			"error", readErr,
		)
		p.reg.sink.Write(p.run.scriptID, SeverityError,
			"output stream read error: "+readErr.Error())
	}

	p.reg.finalize(p.run, exitCode, readErr)
}

// drain reads one stream line by line until EOF, appending each line to the
// run's buffer and forwarding it to the sink. Invalid UTF-8 degrades to
// replacement characters rather than aborting the pump.
func (p *pump) drain(r io.Reader, buf *RingBuffer, sev Severity) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialLineBuf), maxLineBytes)

	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		buf.Append(line)
		p.reg.sink.Write(p.run.scriptID, sev, line)
	}

	// EOF caused by process exit is the normal path; a closed pipe racing
	// the kill is not a stream failure either.
	err := scanner.Err()
	if err == nil || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, syscall.EPIPE) {
		return nil
	}
	return err
}

// exitCodeFromWait extracts the child's exit code from a Wait error.
// Signal deaths map to 128+signal; unrecognized failures map to 1.
func exitCodeFromWait(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}
	return 1
}

package aptdash

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// installRun drives one external install command. The child runs in its own
// process group so cancellation kills the whole tree (apt spawns dpkg and
// maintainer scripts). Stdout and stderr share one pipe; a reader goroutine
// appends complete lines to a mutex-guarded buffer that the UI samples
// without ever blocking on the child.
type installRun struct {
	name    string
	started time.Time

	mu      sync.Mutex
	lines   []string
	trimmed int
	done    bool
	aborted bool // killed by cancellation; there is no outcome to record
	result  outcome
	exitErr error
}

// startInstall launches the configured install command for one package.
// A spawn failure still yields a usable run: already done, outcome failure,
// transcript holding the error.
func startInstall(ctx context.Context, name string) *installRun {
	run := &installRun{name: name, started: time.Now()}

	argv := append(append([]string{}, installArgv...), name)
	run.append(fmt.Sprintf("Running: %s", strings.Join(argv, " ")))
	run.append(strings.Repeat("-", 40))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	cmd.Stdin = nil // /dev/null; the installer must never prompt
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	pr, pw, err := os.Pipe()
	if err != nil {
		run.finish(outcomeFailure, fmt.Errorf("pipe: %w", err))
		return run
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		run.append(fmt.Sprintf("Failed to start install command: %v", err))
		run.finish(outcomeFailure, err)
		return run
	}
	// The child holds its own copy of the write end.
	pw.Close()

	pgid := cmd.Process.Pid
	waitDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			syscall.Kill(-pgid, syscall.SIGKILL)
		case <-waitDone:
		}
	}()

	var readerWG sync.WaitGroup
	readerWG.Add(1)
	go func() {
		defer readerWG.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			run.append(scanner.Text())
		}
		pr.Close()
	}()

	go func() {
		waitErr := cmd.Wait()
		close(waitDone)
		readerWG.Wait()
		if waitErr == nil {
			// A clean exit stands even when cancellation raced it; a child
			// that finished on its own always gets its outcome recorded.
			run.finish(outcomeSuccess, nil)
			return
		}
		if ctx.Err() != nil && killedBySignal(waitErr) {
			run.append("Install aborted.")
			run.abort(waitErr)
			return
		}
		run.append(fmt.Sprintf("Install command failed: %v", waitErr))
		run.finish(outcomeFailure, waitErr)
	}()

	return run
}

func (r *installRun) append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if transcriptCap > 0 && len(r.lines) >= transcriptCap {
		// Ring behavior: oldest line rolls off once the cap is reached.
		copy(r.lines, r.lines[1:])
		r.lines[len(r.lines)-1] = line
		r.trimmed++
		return
	}
	r.lines = append(r.lines, line)
}

func (r *installRun) finish(oc outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	r.result = oc
	r.exitErr = err
}

// abort marks a run whose child was killed mid-flight. Unlike finish there is
// no real exit status, so the result stays outcomeNone.
func (r *installRun) abort(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	r.aborted = true
	r.exitErr = err
}

// wasAborted reports whether the child was killed before producing an exit
// status of its own.
func (r *installRun) wasAborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// killedBySignal distinguishes a SIGKILLed child from one that exited with a
// status of its own choosing.
func killedBySignal(err error) bool {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return false
	}
	ws, ok := ee.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled()
}

// snapshot returns a copy of the transcript so far. Never blocks on the child.
func (r *installRun) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// finished reports whether the run reached a terminal outcome.
func (r *installRun) finished() (bool, outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done, r.result
}

// elapsed is the wall time since the command was launched.
func (r *installRun) elapsed() time.Duration {
	return time.Since(r.started)
}

// lastLine returns the transcript tail for the failure ledger.
func (r *installRun) lastLine() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(r.lines[i]); s != "" && !strings.HasPrefix(s, "---") {
			return s
		}
	}
	return ""
}

package aptdash

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// outcome is the terminal result of one install attempt.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeSuccess
	outcomeFailure
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeFailure:
		return "failure"
	default:
		return "none"
	}
}

// ledgerState holds prior outcomes loaded at startup. The two list files are
// append-only across runs; a name present in both (failed once, succeeded on a
// later run) resolves to success.
type ledgerState struct {
	outcomes map[string]outcome
	warnings int
}

func (l *ledgerState) prior(name string) outcome {
	return l.outcomes[name]
}

// loadLedger reads both list files. Missing files mean an empty ledger.
// Malformed lines are skipped with a warning; history corruption must never
// block installation.
func loadLedger() (*ledgerState, error) {
	l := &ledgerState{outcomes: make(map[string]outcome)}
	if err := l.loadFile(failureLog, outcomeFailure); err != nil {
		return nil, err
	}
	// Success loaded second so it wins over an older failure record.
	if err := l.loadFile(successLog, outcomeSuccess); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ledgerState) loadFile(path string, oc outcome) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		name := strings.TrimSpace(fields[0])
		if name == "" || strings.ContainsAny(name, " \t") {
			cPrintf(colWarn, "Skipping malformed ledger line %s:%d\n", path, lineNo)
			l.warnings++
			continue
		}
		l.outcomes[name] = oc
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read ledger %s: %w", path, err)
	}
	return nil
}

// appendOutcome durably records one result. The record is flushed with
// fsync before returning: process death loses at most the in-flight record,
// never a half-written one.
func appendOutcome(name string, oc outcome, detail string) error {
	path := successLog
	if oc == outcomeFailure {
		path = failureLog
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	record := name + "\t" + time.Now().Format(time.RFC3339)
	if oc == outcomeFailure && detail != "" {
		record += "\t" + sanitizeDetail(detail)
	}
	if _, err := f.WriteString(record + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return nil
}

// sanitizeDetail keeps the failure tail on one ledger line.
func sanitizeDetail(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	const max = 300
	if len(s) > max {
		s = s[:max]
	}
	return s
}

// checkFingerprint warns when the manifest changed since the ledger was last
// written, then records the current fingerprint. Resume still proceeds: the
// ledger is keyed by package name, not position.
func checkFingerprint() {
	current, err := manifestFingerprint(manifestPath)
	if err != nil {
		debugf("fingerprint: %v\n", err)
		return
	}
	if prev, err := os.ReadFile(fingerprintFile); err == nil {
		if stored := strings.TrimSpace(string(prev)); stored != "" && stored != current {
			cPrintln(colWarn, "Manifest changed since the previous run; ledger entries still apply by name.")
		}
	}
	if err := os.WriteFile(fingerprintFile, []byte(current+"\n"), 0o644); err != nil {
		debugf("fingerprint write: %v\n", err)
	}
}

// acquireLock takes an exclusive flock on the state dir lock file so only one
// orchestrator instance writes the ledger at a time.
func acquireLock() (release func(), err error) {
	f, err := os.OpenFile(lockFilePath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockFilePath, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w (%s)", errAlreadyRunning, lockFilePath)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

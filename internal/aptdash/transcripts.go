package aptdash

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// archiveTranscript writes the captured output of a failed install to
// <state>/transcripts/<name>.log.zst so it can be reviewed after the run
// with `aptdash failures`.
func archiveTranscript(name string, lines []string) error {
	if err := os.MkdirAll(transcriptsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create transcripts dir: %w", err)
	}
	path := transcriptPath(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript %s: %w", path, err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := io.WriteString(zw, strings.Join(lines, "\n")+"\n"); err != nil {
		zw.Close()
		return fmt.Errorf("failed to write transcript %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish transcript %s: %w", path, err)
	}
	return nil
}

// readTranscript loads an archived transcript back into lines.
func readTranscript(name string) ([]string, error) {
	path := transcriptPath(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n"), nil
}

func transcriptPath(name string) string {
	// package names are filesystem-safe on Debian, but be defensive about "/"
	return filepath.Join(transcriptsDir, strings.ReplaceAll(name, "/", "_")+".log.zst")
}

// listArchivedFailures returns the packages that have an archived transcript,
// in ledger order.
func listArchivedFailures() ([]string, error) {
	f, err := os.Open(failureLog)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		name := fields[0]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, err := os.Stat(transcriptPath(name)); err == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

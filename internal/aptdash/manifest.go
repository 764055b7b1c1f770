package aptdash

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"lukechampine.com/blake3"
)

// loadManifest reads the package selection list (dpkg --get-selections
// format: "<name>\t<state>"). Lines whose state is deinstall or purge are
// excluded, as are blank and comment lines. Duplicate names keep the first
// occurrence. Compressed manifests are handled transparently by extension.
func loadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close()

	r, closeCodec, err := manifestReader(f, path)
	if err != nil {
		return nil, err
	}
	if closeCodec != nil {
		defer closeCodec()
	}

	seen := make(map[string]bool)
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		name := fields[0]
		state := "install"
		if len(fields) > 1 {
			state = fields[1]
		}
		if state == "deinstall" || state == "purge" {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", errManifestEmpty, path)
	}
	return names, nil
}

// manifestReader picks a decompressor based on the file extension.
func manifestReader(f *os.File, path string) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader for %s: %w", path, err)
		}
		return xzr, nil, nil
	case strings.HasSuffix(path, ".zst"):
		zst, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader for %s: %w", path, err)
		}
		return zst.IOReadCloser(), func() { zst.Close() }, nil
	default:
		// No compression
		return f, nil, nil
	}
}

// manifestFingerprint hashes the raw manifest bytes. The fingerprint is stored
// beside the ledger so a resumed run can warn when the list was edited.
func manifestFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := blake3.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

package aptdash

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// loadInstalledSet performs the single bulk dpkg-query at startup. One query
// for the whole database keeps startup latency flat regardless of manifest
// size. Any failure degrades to an empty set with a warning: the installer
// then simply attempts every package.
func loadInstalledSet(ctx context.Context) map[string]struct{} {
	cmd := exec.CommandContext(ctx, queryArgv[0], queryArgv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		cPrintf(colWarn, "Package database query failed (%v); assuming nothing is installed.\n", err)
		return map[string]struct{}{}
	}
	return parseInventory(out.Bytes())
}

// parseInventory reads "<name> <status>" lines as produced by
// dpkg-query -W -f='${Package} ${Status}\n'. A package counts as installed
// only when its status ends in "ok installed"; half-configured or removed
// states do not.
func parseInventory(data []byte) map[string]struct{} {
	installed := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.HasSuffix(line, "ok installed") {
			name := fields[0]
			// dpkg may report "name:arch" for foreign architectures.
			if i := strings.IndexByte(name, ':'); i > 0 {
				name = name[:i]
			}
			installed[name] = struct{}{}
		}
	}
	return installed
}

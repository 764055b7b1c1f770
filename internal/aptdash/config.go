package aptdash

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const defaultTickInterval = 50 * time.Millisecond

// Config struct
type Config struct {
	Values map[string]string
}

// Load /etc/aptdash.conf and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	// Merge APTDASH_* env overrides
	mergeEnvOverrides(cfg)

	return cfg, nil
}

// Merge APTDASH_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "APTDASH_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

func initConfig(cfg *Config) {
	manifestPath = cfg.Values["APTDASH_MANIFEST"]
	if manifestPath == "" {
		manifestPath = "installed_packages.list"
	}

	stateDir = cfg.Values["APTDASH_STATE_DIR"]
	if stateDir == "" {
		stateDir = "."
	}

	WantDebug := cfg.Values["APTDASH_DEBUG"]
	Debug = WantDebug == "1"

	// The install command is a template: the package name is appended as the
	// final argument. Overridable so tests can substitute a stub script.
	installArgv = splitCommand(cfg.Values["APTDASH_INSTALL_CMD"])
	if len(installArgv) == 0 {
		installArgv = []string{"apt-get", "install", "-y"}
	}

	queryArgv = splitCommand(cfg.Values["APTDASH_QUERY_CMD"])
	if len(queryArgv) == 0 {
		queryArgv = []string{"dpkg-query", "-W", "-f", "${Package} ${Status}\\n"}
	}

	transcriptCap = 5000
	if v := cfg.Values["APTDASH_TRANSCRIPT_CAP"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			transcriptCap = n
		}
	}

	tickInterval = defaultTickInterval
	if v := cfg.Values["APTDASH_TICK_MS"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tickInterval = time.Duration(n) * time.Millisecond
		}
	}

	initPaths()
}

// initPaths derives the state-dir file locations. Called again when -state
// overrides the configured directory.
func initPaths() {
	successLog = filepath.Join(stateDir, "installed_successfully.list")
	failureLog = filepath.Join(stateDir, "failed.list")
	fingerprintFile = filepath.Join(stateDir, "manifest.b3")
	transcriptsDir = filepath.Join(stateDir, "transcripts")
	lockFilePath = filepath.Join(stateDir, "aptdash.lock")
}

// splitCommand splits a configured command line on whitespace. Single or
// double quotes group a spaced argument (the default query format string
// contains a space); no other shell features are interpreted.
func splitCommand(s string) []string {
	var out []string
	var cur strings.Builder
	var quote rune
	inToken := false
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				out = append(out, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		out = append(out, cur.String())
	}
	return out
}

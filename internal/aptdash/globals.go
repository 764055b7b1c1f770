package aptdash

import (
	"errors"
	"sync/atomic"

	"github.com/gookit/color"
)

// GLOBAL STATE
// Set to 1 while a ledger record is being flushed; the signal handler
// refuses to die on the first Ctrl+C while this is held.
var isCriticalAtomic atomic.Int32

// Global variables
var (
	manifestPath    string
	stateDir        string
	transcriptsDir  string
	successLog      string
	failureLog      string
	fingerprintFile string
	lockFilePath    string
	installArgv     []string
	queryArgv       []string
	transcriptCap   int
	tickInterval    = defaultTickInterval
	Debug           bool
	ConfigFile      = "/etc/aptdash.conf"
	version         = "dev"     // overridden at build time
	buildDate       = "unknown" // overridden at build time

	errManifestNotFound = errors.New("manifest not found")
	errManifestEmpty    = errors.New("manifest has no installable entries")
	errAlreadyRunning   = errors.New("another aptdash instance holds the lock")
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)

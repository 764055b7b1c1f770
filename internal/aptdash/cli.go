package aptdash

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: aptdash [command] [arguments]")
	colSuccess.Println("With no command, aptdash runs the installer dashboard.")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"install, i", "[options]", "Run the resumable batch installer (default)"},
		{"status", "", "Summarize manifest and ledger state without installing"},
		{"failures, f", "", "Browse archived transcripts of failed installs"},
		{"version, --version", "", "Version information"},
		{"help", "", "Show this help"},
	}

	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ")
		color.Bold.Print(c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			color.Cyan.Print(c.Args)
		}
		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))
		color.Info.Println(c.Desc)
	}

	fmt.Println()
	color.Info.Println("Install options:")
	fmt.Println("  -manifest <path>   package list (dpkg --get-selections format; .gz/.xz/.zst ok)")
	fmt.Println("  -state <dir>       directory for ledger, lock and transcripts")
	fmt.Println("  -plain             no-TTY mode: progress bar instead of the dashboard")
	fmt.Println("  -no-elevate        do not re-exec under sudo")
}

// Main is the CLI entrypoint for cmd/aptdash.
func Main() {
	// 1. CONTEXT AND SIGNAL SETUP
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// Signal policy: while a ledger record is being flushed (critical), the
	// first signal is held and only a second one forces exit; otherwise the
	// context is cancelled gracefully.
	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					fmt.Printf("\n[WARNING] Recording an outcome. Press Ctrl+C AGAIN to force exit NOW.\n")
					select {
					case <-sigs:
						fmt.Println("\n[FATAL] Forced immediate exit.")
						os.Exit(130)
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				}
				debugf("received %v, cancelling\n", sig)
				cancel()
				select {
				case <-sigs:
					fmt.Println("\n[FATAL] Second interrupt received. Forcing immediate exit.")
					os.Exit(130)
				case <-time.After(500 * time.Millisecond):
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	cfg, err := loadConfig(ConfigFile)
	if err != nil {
		cPrintf(colWarn, "Config load warning: %v\n", err)
	}
	initConfig(cfg)

	cmd := "install"
	rest := os.Args[1:]
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		cmd = rest[0]
		rest = rest[1:]
	}

	switch cmd {
	case "install", "i":
		os.Exit(runInstallCmd(ctx, rest))
	case "status":
		os.Exit(runStatusCmd(ctx))
	case "failures", "f":
		os.Exit(runFailureViewer())
	case "version", "--version":
		fmt.Printf("aptdash %s (%s)\n", version, buildDate)
	case "help", "-h", "--help":
		printHelp()
	default:
		colError.Printf("Unknown command: %s\n", cmd)
		printHelp()
		os.Exit(1)
	}
}

// runInstallCmd wires the whole pipeline: manifest -> ledger -> inventory ->
// model -> dashboard or plain loop. Returns the process exit code.
func runInstallCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	manifestFlag := fs.String("manifest", "", "package list path")
	stateFlag := fs.String("state", "", "state directory")
	plainFlag := fs.Bool("plain", false, "plain output, no dashboard")
	noElevate := fs.Bool("no-elevate", false, "do not re-exec under sudo")
	fs.Parse(args)

	if *manifestFlag != "" {
		manifestPath = *manifestFlag
	}
	if *stateFlag != "" {
		stateDir = *stateFlag
		initPaths()
	}

	if !*noElevate && os.Geteuid() != 0 && needsRootPrivileges("install") {
		cPrintln(colNote, "Root privileges are required. Re-running with sudo...")
		if err := selfElevate(); err != nil {
			colError.Printf("Error: %v\n", err)
			return 1
		}
	}

	// Fatal startup checks happen before any UI or state is touched.
	names, err := loadManifest(manifestPath)
	if err != nil {
		colError.Printf("Error: %v\n", err)
		return 1
	}

	release, err := acquireLock()
	if err != nil {
		colError.Printf("Error: %v\n", err)
		return 1
	}
	defer release()

	ledger, err := loadLedger()
	if err != nil {
		// Degrade rather than block: resumability is best-effort.
		cPrintf(colWarn, "Ledger unreadable (%v); starting with empty history.\n", err)
		ledger = &ledgerState{outcomes: map[string]outcome{}}
	}
	checkFingerprint()

	installed := loadInstalledSet(ctx)

	m := newProgressModel(names)
	m.seed(installed, ledger)

	if *plainFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := runPlain(ctx, m); err != nil {
			colError.Printf("Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runDashboard(ctx, m); err != nil {
		// The screen is already restored by the time we get here.
		colError.Printf("Error: %v\n", err)
		return 1
	}
	printSummary(m)
	return 0
}

// runStatusCmd reports what a run would do, without installing anything.
func runStatusCmd(ctx context.Context) int {
	names, err := loadManifest(manifestPath)
	if err != nil {
		colError.Printf("Error: %v\n", err)
		return 1
	}
	ledger, err := loadLedger()
	if err != nil {
		cPrintf(colWarn, "Ledger unreadable (%v)\n", err)
		ledger = &ledgerState{outcomes: map[string]outcome{}}
	}
	installed := loadInstalledSet(ctx)

	m := newProgressModel(names)
	m.seed(installed, ledger)
	c := m.counts()

	colArrow.Print("-> ")
	colSuccess.Printf("Manifest: %s (%d packages)\n", manifestPath, c.total)
	cPrintf(colInfo, "  to install:        %d\n", c.pending)
	cPrintf(colInfo, "  already installed: %d\n", c.skippedInstalled)
	cPrintf(colInfo, "  prior success:     %d\n", c.skippedSuccess)
	cPrintf(colInfo, "  prior failure:     %d\n", c.skippedFailure)
	if c.skippedFailure > 0 {
		cPrintln(colWarn, "Prior failures are not retried; edit the ledger to re-attempt them.")
	}
	return 0
}

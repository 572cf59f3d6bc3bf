package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"golang.org/x/term"

	ren "github.com/zsx/r3-sub008"
)

const (
	appName     = "r3scan"
	historyFile = ".r3scan_history"
	promptMain  = ">> "
	promptCont  = "-- "
)

var banner = fmt.Sprintf("r3scan %s\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", ren.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "scan":
		os.Exit(cmdScan(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "header":
		os.Exit(cmdHeader(os.Args[2:]))
	case "version":
		fmt.Println(ren.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`r3scan %s (built %s)

Usage:
  %s scan [-next] [-only] [-relax] <file>   Scan a source file and print the molded tree.
  %s repl                                   Start the scan REPL.
  %s header <file>                          Locate a script header and print its offset.
  %s version                                Print the compiled version

With no file argument, scan reads standard input.
`, ren.Version, ren.BuildDate, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// scan
// -----------------------------------------------------------------------------

func cmdScan(args []string) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	next := fs.Bool("next", false, "stop after the first top-level value")
	only := fs.Bool("only", false, "deliver a single element even if compound")
	relax := fs.Bool("relax", false, "insert error cells instead of failing")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var src []byte
	var err error
	var name string
	if fs.NArg() > 0 {
		name = fs.Arg(0)
		src, err = os.ReadFile(name)
	} else {
		name = "stdin"
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, name, err)
		return 1
	}

	var opts ren.ScanOpts
	if *next {
		opts |= ren.ScanNext
	}
	if *only {
		opts |= ren.ScanOnly
	}
	if *relax {
		opts |= ren.ScanRelax
	}

	out, err := ren.Transcode(src, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, ren.WrapErrorWithSource(err, string(src)))
		return 1
	}
	fmt.Println(ren.Mold(ren.SeriesAt(out, 0)))
	if opts&(ren.ScanNext|ren.ScanOnly) != 0 {
		rest := ren.SeriesAt(out, 1)
		fmt.Printf("; rest: %s\n", ren.Mold(rest))
	}
	return 0
}

// -----------------------------------------------------------------------------
// header
// -----------------------------------------------------------------------------

func cmdHeader(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s header <file>\n", appName)
		return 2
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}
	off := ren.ScanHeader(src)
	switch {
	case off < 0 && off != -1:
		fmt.Printf("embedded header at %d\n", -off)
	case off >= 0:
		fmt.Printf("header at %d\n", off)
	default:
		fmt.Println("no header")
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	// A piped stdin skips the line editor entirely.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return pipeRepl()
	}

	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readByScanProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		v, err := ren.Scan([]byte(code))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(ren.WrapErrorWithSource(err, code).Error()))
			continue
		}
		fmt.Println(blue(ren.Mold(v)))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// pipeRepl scans whole lines from a non-tty stdin.
func pipeRepl() int {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	v, err := ren.Scan(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, ren.WrapErrorWithSource(err, string(src)))
		return 1
	}
	fmt.Println(ren.Mold(v))
	return 0
}

// readByScanProbe keeps prompting while the input scans as incomplete
// (an unclosed bracket, paren or string).
func readByScanProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, serr := ren.Scan([]byte(src))
		if serr == nil {
			return src, true
		}
		if isIncomplete(serr) {
			continue
		}
		return src, true
	}
}

func isIncomplete(err error) bool {
	var se *ren.ScanError
	return errors.As(err, &se) && se.Kind == ren.ErrMissing
}

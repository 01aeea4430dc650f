package diag

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"viper/common"
)

var (
	okTag    = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnTag  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorTag = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)

	accent    = pterm.NewStyle(pterm.FgLightGreen)
	warnText  = pterm.NewStyle(pterm.FgYellow)
	errorText = pterm.NewStyle(pterm.FgRed)
)

// PrintError prints a standalone Go error (CLI usage, config loading, ...).
func PrintError(tag string, err error) {
	errorTag.Print(tag)
	errorText.Println(" " + err.Error())
}

func (ce *ConfigError) display() {
	PrintError(ce.Category+" Error", fmt.Errorf("%s", ce.Message))
}

// display prints a tagged location header, the message, and -- when the
// span is known -- the offending source line with the span underlined.
func (cm *CompileMessage) display() {
	tag, text := warnTag, warnText
	label := kindStrings[cm.Kind] + " Warning"
	if cm.IsError {
		tag, text = errorTag, errorText
		label = kindStrings[cm.Kind] + " Error"
	}

	fmt.Println()
	tag.Print(label)
	if cm.Span != nil {
		fmt.Printf(" %s:%d:%d", filepath.Base(cm.File), cm.Span.Start.Line, cm.Span.Start.Col)
	} else {
		fmt.Print(" " + filepath.Base(cm.File))
	}
	fmt.Println(": " + cm.Message)

	if cm.Span != nil {
		cm.displaySource(text)
	}
}

// displaySource excerpts the line the span starts on and underlines the
// spanned columns. A span continuing past that line underlines to the end
// of it; the start location is what a fix needs, and nearly every span
// the front end produces sits on a single line anyway. Tabs are mapped to
// single spaces so the underline's column arithmetic stays valid. An
// unreadable file (already gone between lexing and reporting) just drops
// the excerpt; the header above still carries the location.
func (cm *CompileMessage) displaySource(underline *pterm.Style) {
	line, ok := readLine(cm.File, cm.Span.Start.Line)
	if !ok {
		return
	}
	line = strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		return r
	}, line)

	prefix := fmt.Sprintf(" %d | ", cm.Span.Start.Line)
	fmt.Println(prefix + line)

	start := cm.Span.Start.Col
	if start < 1 {
		start = 1
	}
	width := 1
	if cm.Span.End.Line == cm.Span.Start.Line && cm.Span.End.Col > start {
		width = cm.Span.End.Col - start
	} else if cm.Span.End.Line > cm.Span.Start.Line && len(line) >= start {
		width = len(line) - start + 1
	}

	fmt.Print(strings.Repeat(" ", len(prefix)+start-1))
	underline.Println(strings.Repeat("^", width))
}

// readLine returns line n (1-based) of the file at path.
func readLine(path string, n int) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for i := 1; sc.Scan(); i++ {
		if i == n {
			return sc.Text(), true
		}
	}
	return "", false
}

func displayFatal(msg string) {
	fmt.Println()
	errorTag.Print("internal error")
	errorText.Println(" " + msg)
}

// ReportCompileHeader prints the pre-compilation banner.
func ReportCompileHeader(inputFile string) {
	if log.LogLevel < LogLevelVerbose {
		return
	}
	fmt.Print("viper ")
	accent.Print("v" + common.Version)
	fmt.Println(" compiling " + inputFile)
}

var (
	phaseName  string
	phaseStart time.Time
)

// BeginPhase marks the start of a pipeline stage. Nothing prints until
// the stage resolves one way or the other -- stages are short enough that
// the per-stage timing EndPhase reports is worth more than live progress.
func BeginPhase(name string) {
	phaseName = name
	phaseStart = time.Now()
}

// EndPhase reports the current stage's completion and timing.
func EndPhase() {
	if phaseName == "" {
		return
	}
	if log.LogLevel >= LogLevelVerbose {
		okTag.Print(" ok ")
		fmt.Printf(" %-20s %6.3fs\n", phaseName, time.Since(phaseStart).Seconds())
	}
	phaseName = ""
}

// failPhase marks the current stage failed; the diagnostic that caused
// the failure prints directly underneath.
func failPhase() {
	if phaseName == "" {
		return
	}
	if log.LogLevel >= LogLevelVerbose {
		errorTag.Print("fail")
		fmt.Println(" " + phaseName)
	}
	phaseName = ""
}

// ReportCompilationFinished flushes deferred warnings and prints the
// closing summary.
func ReportCompilationFinished(outputPath string) {
	if log.LogLevel >= LogLevelWarning {
		for _, w := range log.deferred {
			w.display()
		}
	}

	if log.LogLevel < LogLevelVerbose {
		return
	}

	fmt.Println()
	if ShouldProceed() {
		okTag.Print(" ok ")
		fmt.Printf(" wrote %s (%d warnings)\n", outputPath, len(log.deferred))
	} else {
		errorTag.Print("fail")
		fmt.Printf(" %d errors, %d warnings\n", log.errors, len(log.deferred))
	}
}

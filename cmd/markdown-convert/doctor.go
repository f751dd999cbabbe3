package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/mdconvert/markdown-convert/internal/assets"
	"github.com/mdconvert/markdown-convert/internal/config"
	"github.com/mdconvert/markdown-convert/internal/dataset"
	"github.com/mdconvert/markdown-convert/internal/extras"
	"github.com/mdconvert/markdown-convert/internal/fileutil"
)

// Overall doctor status.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// checkLevel grades a single check.
type checkLevel string

const (
	levelOK    checkLevel = "ok"
	levelWarn  checkLevel = "warn"
	levelError checkLevel = "error"
)

// doctorTimeout bounds the checks that touch the SQL engine or the browser.
const doctorTimeout = 10 * time.Second

// checkResult is one line of the report.
type checkResult struct {
	Group  string     `json:"group"`
	Name   string     `json:"name"`
	Level  checkLevel `json:"level"`
	Detail string     `json:"detail,omitempty"`
}

// doctorReport is the full diagnostic output.
type doctorReport struct {
	Status   string        `json:"status"`
	Platform string        `json:"platform"`
	Checks   []checkResult `json:"checks"`
	Extras   []string      `json:"extras"`
	Styles   []string      `json:"styles"`
}

// doctorCheck inspects one area of the host.
type doctorCheck func(ctx context.Context) []checkResult

// doctorChecks run in report order.
var doctorChecks = []doctorCheck{
	checkBrowser,
	checkSandbox,
	checkTempDir,
	checkDatasetEngine,
	checkConfig,
}

// runDoctorCmd executes "markdown-convert doctor". It exits 1 only when a
// check failed outright; warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()
	report := runDoctor(ctx, doctorChecks)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor runs checks and grades the report by its worst result.
func runDoctor(ctx context.Context, checks []doctorCheck) *doctorReport {
	report := &doctorReport{
		Status:   statusReady,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Extras:   extras.BuiltinNames(),
		Styles:   assets.BuiltinStyles(),
	}
	for _, check := range checks {
		report.Checks = append(report.Checks, check(ctx)...)
	}
	for _, c := range report.Checks {
		switch c.Level {
		case levelError:
			report.Status = statusErrors
		case levelWarn:
			if report.Status == statusReady {
				report.Status = statusWarnings
			}
		}
	}
	return report
}

// checkBrowser locates Chrome the way the renderer does and reads its version.
func checkBrowser(ctx context.Context) []checkResult {
	const group = "Browser"

	path := os.Getenv("ROD_BROWSER_BIN")
	if path == "" {
		var found bool
		path, found = launcher.LookPath()
		if !found {
			return []checkResult{{group, "chrome", levelError, "Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN"}}
		}
	}
	if !fileutil.FileExists(path) {
		return []checkResult{{group, "chrome", levelError, "no browser at " + path}}
	}

	results := []checkResult{{group, "chrome", levelOK, path}}
	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		results = append(results, checkResult{group, "version", levelWarn, fmt.Sprintf("could not read version: %v", err)})
	} else {
		results = append(results, checkResult{group, "version", levelOK, strings.TrimSpace(string(out))})
	}
	return results
}

// checkSandbox warns when Chrome's sandbox is likely to fail to start.
func checkSandbox(_ context.Context) []checkResult {
	const group = "Environment"

	var results []checkResult
	container, hint := isContainer()
	if container {
		results = append(results, checkResult{group, "container", levelOK, hint})
	}
	ci := isCI()
	if ci {
		results = append(results, checkResult{group, "ci", levelOK, "detected"})
	}

	sandboxed := os.Getenv("ROD_NO_SANDBOX") != "1"
	switch {
	case sandboxed && (container || ci):
		results = append(results, checkResult{group, "sandbox", levelWarn, "container or CI detected; set ROD_NO_SANDBOX=1"})
	case sandboxed:
		results = append(results, checkResult{group, "sandbox", levelOK, "enabled"})
	default:
		results = append(results, checkResult{group, "sandbox", levelOK, "disabled (ROD_NO_SANDBOX=1)"})
	}
	return results
}

// checkTempDir verifies the renderer can stage its HTML file.
func checkTempDir(_ context.Context) []checkResult {
	const group = "System"

	_, cleanup, err := fileutil.WriteTempFile("<!DOCTYPE html>", "html")
	if err != nil {
		return []checkResult{{group, "temp dir", levelError, fmt.Sprintf("%s not writable: %v", os.TempDir(), err)}}
	}
	cleanup()
	return []checkResult{{group, "temp dir", levelOK, os.TempDir()}}
}

// checkDatasetEngine round-trips a small table through the SQL engine used
// by the dynamic-tables and dynamic-queries extras.
func checkDatasetEngine(ctx context.Context) []checkResult {
	const group = "System"

	store, err := dataset.Open(ctx)
	if err != nil {
		return []checkResult{{group, "datasets", levelError, err.Error()}}
	}
	defer func() { _ = store.Close() }()

	if err := store.Register(ctx, "probe", []string{"n"}, [][]string{{"1"}, {"2"}}); err != nil {
		return []checkResult{{group, "datasets", levelError, err.Error()}}
	}
	_, rows, err := store.Query(ctx, "SELECT SUM(n) FROM probe")
	if err != nil || len(rows) != 1 || len(rows[0]) != 1 || rows[0][0] != "3" {
		return []checkResult{{group, "datasets", levelError, fmt.Sprintf("unexpected probe result %v (%v)", rows, err)}}
	}
	return []checkResult{{group, "datasets", levelOK, "SQL engine ready"}}
}

// checkConfig loads the config named by MDCONVERT_CONFIG, if any.
func checkConfig(_ context.Context) []checkResult {
	const group = "Config"

	name := os.Getenv("MDCONVERT_CONFIG")
	if name == "" {
		return nil
	}
	if _, err := config.LoadConfig(name); err != nil {
		return []checkResult{{group, name, levelError, err.Error()}}
	}
	return []checkResult{{group, name, levelOK, "valid"}}
}

// isContainer reports whether we run in a container and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("MDCONVERT_CONTAINER") == "1" {
		return true, "MDCONVERT_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

func isCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// printDoctorReport writes the human-readable report, one section per group.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "markdown-convert doctor")
	fmt.Fprintf(w, "Platform: %s\n", r.Platform)

	group := ""
	for _, c := range r.Checks {
		if c.Group != group {
			group = c.Group
			fmt.Fprintf(w, "\n%s\n", group)
		}
		fmt.Fprintf(w, "  [%s] %s", strings.ToUpper(string(c.Level)), c.Name)
		if c.Detail != "" {
			fmt.Fprintf(w, ": %s", c.Detail)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "\nFeatures")
	fmt.Fprintf(w, "  Extras: %s\n", strings.Join(r.Extras, ", "))
	fmt.Fprintf(w, "  Styles: %s\n", strings.Join(r.Styles, ", "))
	fmt.Fprintln(w)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

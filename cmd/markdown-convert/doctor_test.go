package main

// Notes:
// - checkBrowser depends on the host, so runDoctor is driven with stub
//   checks and the real browser check is only smoke-tested via --json.
// - checkSandbox and checkConfig read the environment, so those tests use
//   t.Setenv and cannot run in parallel.

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestRunDoctor - Status grading
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	stub := func(levels ...checkLevel) doctorCheck {
		return func(context.Context) []checkResult {
			var out []checkResult
			for _, l := range levels {
				out = append(out, checkResult{Group: "Stub", Name: "x", Level: l})
			}
			return out
		}
	}

	tests := []struct {
		name   string
		checks []doctorCheck
		want   string
	}{
		{name: "no checks", want: statusReady},
		{name: "all ok", checks: []doctorCheck{stub(levelOK, levelOK)}, want: statusReady},
		{name: "warning", checks: []doctorCheck{stub(levelOK), stub(levelWarn)}, want: statusWarnings},
		{name: "error wins over later warning", checks: []doctorCheck{stub(levelError), stub(levelWarn)}, want: statusErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := runDoctor(context.Background(), tt.checks)
			if r.Status != tt.want {
				t.Errorf("Status = %q, want %q", r.Status, tt.want)
			}
			if len(r.Extras) == 0 || len(r.Styles) == 0 {
				t.Errorf("features not listed: %v %v", r.Extras, r.Styles)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Individual checks
// ---------------------------------------------------------------------------

func TestCheckTempDir(t *testing.T) {
	t.Parallel()

	got := checkTempDir(context.Background())
	if len(got) != 1 || got[0].Level != levelOK {
		t.Errorf("checkTempDir() = %+v, want one ok result", got)
	}
}

func TestCheckDatasetEngine(t *testing.T) {
	t.Parallel()

	got := checkDatasetEngine(context.Background())
	want := []checkResult{{Group: "System", Name: "datasets", Level: levelOK, Detail: "SQL engine ready"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("checkDatasetEngine() mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckSandbox_ContainerWithoutFlag(t *testing.T) {
	t.Setenv("MDCONVERT_CONTAINER", "1")
	t.Setenv("ROD_NO_SANDBOX", "")

	got := checkSandbox(context.Background())
	last := got[len(got)-1]
	if last.Name != "sandbox" || last.Level != levelWarn {
		t.Errorf("sandbox result = %+v, want a warning", last)
	}
}

func TestCheckSandbox_Disabled(t *testing.T) {
	t.Setenv("ROD_NO_SANDBOX", "1")

	got := checkSandbox(context.Background())
	last := got[len(got)-1]
	if last.Level != levelOK || !strings.Contains(last.Detail, "disabled") {
		t.Errorf("sandbox result = %+v, want ok/disabled", last)
	}
}

func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "ok.yaml")
	invalid := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(valid, []byte("style: default\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(invalid, []byte("mode: sometimes\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		env       string
		wantLevel checkLevel
		wantNone  bool
	}{
		{name: "unset", env: "", wantNone: true},
		{name: "valid", env: valid, wantLevel: levelOK},
		{name: "invalid", env: invalid, wantLevel: levelError},
		{name: "missing", env: filepath.Join(dir, "nope.yaml"), wantLevel: levelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MDCONVERT_CONFIG", tt.env)

			got := checkConfig(context.Background())
			if tt.wantNone {
				if len(got) != 0 {
					t.Errorf("checkConfig() = %+v, want nothing", got)
				}
				return
			}
			if len(got) != 1 || got[0].Level != tt.wantLevel {
				t.Errorf("checkConfig() = %+v, want level %q", got, tt.wantLevel)
			}
		})
	}
}

func TestIsContainer_Override(t *testing.T) {
	t.Setenv("MDCONVERT_CONTAINER", "1")

	got, hint := isContainer()
	if !got || hint != "MDCONVERT_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q", got, hint)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Command surface
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	te := newTestEnv()
	code := runDoctorCmd([]string{"--json"}, te.Environment)

	var got doctorReport
	if err := json.Unmarshal(te.stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, te.stdout.String())
	}
	wantCode := ExitSuccess
	if got.Status == statusErrors {
		wantCode = ExitGeneral
	}
	if code != wantCode {
		t.Errorf("exit code = %d, want %d for status %q", code, wantCode, got.Status)
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	te := newTestEnv()
	if code := runDoctorCmd([]string{"--yaml"}, te.Environment); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestPrintDoctorReport - Human-readable report
// ---------------------------------------------------------------------------

func TestPrintDoctorReport(t *testing.T) {
	t.Parallel()

	r := &doctorReport{
		Status:   statusWarnings,
		Platform: "linux/amd64",
		Checks: []checkResult{
			{Group: "Browser", Name: "chrome", Level: levelOK, Detail: "/usr/bin/chromium"},
			{Group: "Browser", Name: "version", Level: levelOK, Detail: "Chromium 140"},
			{Group: "Environment", Name: "sandbox", Level: levelWarn, Detail: "set ROD_NO_SANDBOX=1"},
		},
		Extras: []string{"table-of-contents", "highlights"},
		Styles: []string{"default"},
	}

	var buf bytes.Buffer
	printDoctorReport(&buf, r)

	for _, want := range []string{
		"Platform: linux/amd64",
		"Browser\n  [OK] chrome: /usr/bin/chromium\n  [OK] version: Chromium 140\n",
		"Environment\n  [WARN] sandbox: set ROD_NO_SANDBOX=1\n",
		"Extras: table-of-contents, highlights",
		"Status: Ready with warnings",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report missing %q:\n%s", want, buf.String())
		}
	}
}

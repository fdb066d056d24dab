package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/logdog/internal/report"
)

const sampleLog = "2025-03-03 02:26:10.123456 service fail: timeout\n" +
	"2025-03-03 02:26:10.654321 service ok\n" +
	"2025-03-03 02:26:12.000000 service fail: disk\n"

func writeLogDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create log file: %v", err)
	}
	return dir
}

func runScanArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ExitCode = 0
	var out bytes.Buffer
	cmd := NewScanCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewScanCommand(t *testing.T) {
	cmd := NewScanCommand()

	if cmd.Use != "scan" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	for _, flag := range []string{"config", "folder", "phrases", "mode", "ignore-case", "output", "chart", "from", "to", "verbose", "quiet"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewUICommand(t *testing.T) {
	cmd := NewUICommand()
	for _, flag := range []string{"config", "prefs", "log", "verbose"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewVersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); got != "logdog dev\n" {
		t.Fatalf("version output = %q, want %q", got, "logdog dev\n")
	}
}

func TestParseFolderSpec(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name      string
		spec      string
		wantColor string
		wantLabel string
		wantErr   bool
	}{
		{name: "path only", spec: dir, wantColor: "blue", wantLabel: filepath.Base(dir)},
		{name: "path and color", spec: dir + ",red", wantColor: "red", wantLabel: filepath.Base(dir)},
		{name: "all fields", spec: dir + ", #00ff00 , web tier", wantColor: "#00ff00", wantLabel: "web tier"},
		{name: "label keeps commas", spec: dir + ",red,a,b", wantColor: "red", wantLabel: "a,b"},
		{name: "empty path", spec: ",red,web", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFolderSpec(tt.spec, 0)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFolderSpec(%q) error = nil, want error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFolderSpec(%q) error = %v", tt.spec, err)
			}
			if f.Path != dir {
				t.Fatalf("Path = %q, want %q", f.Path, dir)
			}
			if f.Color != tt.wantColor || f.Label != tt.wantLabel {
				t.Fatalf("Color, Label = %q, %q; want %q, %q", f.Color, f.Label, tt.wantColor, tt.wantLabel)
			}
		})
	}
}

func TestRunScan_JSONAndChart(t *testing.T) {
	dir := writeLogDir(t, sampleLog)
	chartPath := filepath.Join(t.TempDir(), "out.png")

	out, err := runScanArgs(t, "--folder", dir+",red,web", "--phrases", "fail", "--output", "json", "--chart", chartPath)
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", ExitCode)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if rep.Summary.Matches != 2 || rep.Summary.Series != 1 {
		t.Fatalf("summary = %+v, want 2 matches in 1 series", rep.Summary)
	}
	if len(rep.Folders) != 1 || rep.Folders[0].Label != "web" {
		t.Fatalf("folders = %+v, want one web folder", rep.Folders)
	}
	if rep.Metadata.ChartFile != chartPath {
		t.Fatalf("ChartFile = %q, want %q", rep.Metadata.ChartFile, chartPath)
	}
	if info, err := os.Stat(chartPath); err != nil || info.Size() == 0 {
		t.Fatalf("chart file missing or empty: %v", err)
	}
}

func TestRunScan_TextOutput(t *testing.T) {
	dir := writeLogDir(t, sampleLog)

	out, err := runScanArgs(t, "--folder", dir+",red,web", "--phrases", "fail")
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if !strings.Contains(out, "web") {
		t.Fatalf("text output missing folder label:\n%s", out)
	}
}

func TestRunScan_NoMatchesExitCode(t *testing.T) {
	dir := writeLogDir(t, "2025-03-03 02:26:10.000000 all good\n")

	if _, err := runScanArgs(t, "--folder", dir, "--phrases", "fail", "--quiet"); err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1", ExitCode)
	}
}

func TestRunScan_Errors(t *testing.T) {
	dir := writeLogDir(t, sampleLog)
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing folder", args: []string{"--folder", filepath.Join(dir, "nope"), "--phrases", "fail", "--quiet"}},
		{name: "no folders", args: []string{"--phrases", "fail"}},
		{name: "no phrases", args: []string{"--folder", dir}},
		{name: "bad mode", args: []string{"--folder", dir, "--phrases", "fail", "--mode", "bars"}},
		{name: "bad color", args: []string{"--folder", dir + ",notacolor", "--phrases", "fail"}},
		{name: "bad output", args: []string{"--folder", dir, "--phrases", "fail", "--output", "xml"}},
		{name: "bad window", args: []string{"--folder", dir, "--phrases", "fail", "--from", "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOGDOG_PHRASES", "")
			if _, err := runScanArgs(t, tt.args...); err == nil {
				t.Fatalf("scan %v error = nil, want error", tt.args)
			}
		})
	}
}

func TestRunValidate_Success(t *testing.T) {
	dir := writeLogDir(t, sampleLog)
	configPath := filepath.Join(t.TempDir(), "scan.yaml")
	content := "phrases:\n  - fail\nmode: counts\nfolders:\n  - path: " + dir + "\n    color: red\n    label: web\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	var out bytes.Buffer
	cmd := NewValidateCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{configPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate error = %v", err)
	}
	for _, want := range []string{"Configuration valid!", `"fail"`, "counts", "web"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("validate output missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "folder not found") {
		t.Fatalf("unexpected folder warning:\n%s", out.String())
	}
}

func TestRunValidate_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "scan.toml")
	if err := os.WriteFile(configPath, []byte("mode = \"bars\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{configPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("validate error = nil, want error")
	}
}

package logger

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerService_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerService(map[string]interface{}{
		"folder_path": dir,
		"console":     false,
	})
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	l.LogAudit("upload accepted", "filename", "jan.xlsx")
	path := l.CurrentFile()
	if err := l.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"upload accepted"`, `"audit":true`, `"filename":"jan.xlsx"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log file missing %s:\n%s", want, out)
		}
	}
}

func TestL_BeforeStartIsNoop(t *testing.T) {
	prev := GlobalLogger
	t.Cleanup(func() { GlobalLogger = prev })

	GlobalLogger = nil
	L().Infow("dropped", "k", "v")
	Audit("dropped too")
}

func TestLoggerService_RotatesBySize(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerService(map[string]interface{}{
		"folder_path": dir,
		"console":     false,
		"max_file_mb": 1,
	})
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.nowForNames = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Stop()

	first := l.CurrentFile()
	l.Logger().Info(strings.Repeat("x", 1<<20))
	if err := l.rotateIfNeeded(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if l.CurrentFile() == first {
		t.Fatalf("expected a new file after exceeding max size")
	}
}

func TestLoggerService_ZipsOldLogs(t *testing.T) {
	dir := t.TempDir()
	l := NewLoggerService(map[string]interface{}{
		"folder_path":    dir,
		"retention_days": 7,
	})

	old := filepath.Join(dir, "app_20240101_000000.000.log")
	if err := os.WriteFile(old, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "app_recent.log")
	if err := os.WriteFile(fresh, []byte("new\n"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := l.zipAndCleanOldLogs()
	if err != nil || n != 1 {
		t.Fatalf("archived want=1 got=%d err=%v", n, err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("old log still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh log removed: %v", err)
	}

	zips, _ := filepath.Glob(filepath.Join(dir, "logs_*.zip"))
	if len(zips) != 1 {
		t.Fatalf("want one archive got %v", zips)
	}
	zr, err := zip.OpenReader(zips[0])
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != filepath.Base(old) {
		t.Fatalf("unexpected archive contents")
	}
}

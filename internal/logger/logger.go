package logger

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"CancelDash/internal/config"
)

type LoggerService struct {
	Config        map[string]interface{}
	file          *os.File
	mu            sync.Mutex
	stopCh        chan struct{}
	wg            sync.WaitGroup
	currentLog    string
	maxFileBytes  int64
	retentionDays int
	folderPath    string
	console       bool
	level         zap.AtomicLevel

	zl          *zap.Logger
	sugar       *zap.SugaredLogger
	restoreStd  func()
	stopOnce    sync.Once
	nowForNames func() time.Time
}

func NewLoggerService(cfg map[string]interface{}) *LoggerService {
	level, err := zap.ParseAtomicLevel(config.String(cfg, "level", "info"))
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return &LoggerService{
		Config:        cfg,
		stopCh:        make(chan struct{}),
		maxFileBytes:  int64(config.Int(cfg, "max_file_mb", 0)) * 1024 * 1024,
		retentionDays: config.Int(cfg, "retention_days", 0),
		folderPath:    config.String(cfg, "folder_path", "./logs"),
		console:       config.Bool(cfg, "console", true),
		level:         level,
		nowForNames:   time.Now,
	}
}

func (l *LoggerService) Name() string {
	return "logger"
}

func (l *LoggerService) Start() error {
	if err := os.MkdirAll(l.folderPath, 0755); err != nil {
		return err
	}
	logFile := l.nextLogFileName()
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.file = file
	l.currentLog = logFile
	l.mu.Unlock()

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(fileSink{l}), l.level),
	}
	if l.console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stdout),
			l.level,
		))
	}
	l.zl = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	l.sugar = l.zl.Sugar()
	l.restoreStd = zap.RedirectStdLog(l.zl)

	l.sugar.Infow("logger started", "file", logFile)

	// rotation and retention
	l.wg.Add(1)
	go l.backgroundWorker()

	return nil
}

func (l *LoggerService) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.wg.Wait()

		if l.sugar != nil {
			l.sugar.Info("logger stopping")
			_ = l.zl.Sync()
		}
		if l.restoreStd != nil {
			l.restoreStd()
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.file != nil {
			err = l.file.Close()
			l.file = nil
		}
	})
	return err
}

// Logger returns the structured logger, or a no-op logger before Start.
func (l *LoggerService) Logger() *zap.SugaredLogger {
	if l == nil || l.sugar == nil {
		return zap.NewNop().Sugar()
	}
	return l.sugar
}

func (l *LoggerService) CurrentFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLog
}

// fileSink lets zap write through the service so rotation can swap the file
// underneath it.
type fileSink struct{ l *LoggerService }

func (s fileSink) Write(p []byte) (int, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if s.l.file == nil {
		return len(p), nil
	}
	return s.l.file.Write(p)
}

func (s fileSink) Sync() error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if s.l.file == nil {
		return nil
	}
	return s.l.file.Sync()
}

func (l *LoggerService) nextLogFileName() string {
	timestamp := l.nowForNames().Format("20060102_150405.000")
	return filepath.Join(l.folderPath, fmt.Sprintf("app_%s.log", timestamp))
}

func (l *LoggerService) rotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil || l.maxFileBytes <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxFileBytes {
		return nil
	}

	newLog := l.nextLogFileName()
	file, err := os.OpenFile(newLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	// size exceeded
	l.file.Close()
	l.file = file
	l.currentLog = newLog
	return nil
}

func (l *LoggerService) backgroundWorker() {
	defer l.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			if err := l.rotateIfNeeded(); err != nil {
				l.sugar.Warnw("log rotation failed", "error", err)
			}
		case <-retentionTicker.C:
			if n, err := l.zipAndCleanOldLogs(); err != nil {
				l.sugar.Warnw("log retention failed", "error", err)
			} else if n > 0 {
				l.sugar.Infow("archived old logs", "files", n)
			}
		}
	}
}

// zipAndCleanOldLogs moves .log files older than the retention window into a
// dated zip and returns how many were archived. The file in use is skipped.
func (l *LoggerService) zipAndCleanOldLogs() (int, error) {
	if l.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -l.retentionDays)
	files, err := os.ReadDir(l.folderPath)
	if err != nil {
		return 0, err
	}
	current := l.CurrentFile()

	var old []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".log" {
			continue
		}
		fullPath := filepath.Join(l.folderPath, f.Name())
		if fullPath == current {
			continue
		}
		info, err := f.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		old = append(old, fullPath)
	}
	if len(old) == 0 {
		return 0, nil
	}

	zipName := filepath.Join(l.folderPath, fmt.Sprintf("logs_%s.zip", time.Now().Format("20060102_150405")))
	zipFile, err := os.Create(zipName)
	if err != nil {
		return 0, err
	}
	defer zipFile.Close()
	zipWriter := zip.NewWriter(zipFile)

	archived := 0
	for _, fullPath := range old {
		if err := addToZip(zipWriter, fullPath); err != nil {
			continue
		}
		os.Remove(fullPath)
		archived++
	}
	if err := zipWriter.Close(); err != nil {
		return archived, err
	}
	return archived, nil
}

func addToZip(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// LogAudit records an audit line with optional key/value context.
func (l *LoggerService) LogAudit(msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"audit", true}, keysAndValues...)
	l.Logger().Infow(msg, kv...)
}

var GlobalLogger *LoggerService

func SetGlobalLogger(l *LoggerService) {
	GlobalLogger = l
}

// L returns the process logger. It is safe to call before the logger service
// has started.
func L() *zap.SugaredLogger {
	return GlobalLogger.Logger()
}

// Audit is LogAudit on the global logger.
func Audit(msg string, keysAndValues ...interface{}) {
	if GlobalLogger == nil {
		return
	}
	GlobalLogger.LogAudit(msg, keysAndValues...)
}

package common

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/Laisky/zap"

	"github.com/VaDeloitte/test-project-sub002/common/logger"
)

var (
	Port         = flag.Int("port", 3000, "the listening port")
	PrintVersion = flag.Bool("version", false, "print version and exit")
	LogDir       = flag.String("log-dir", "./logs", "specify the log directory")
)

// Version is overwritten at build time with -ldflags.
var Version = "v0.0.0"

// Init parses flags and prepares the log directory.
func Init() {
	flag.Parse()

	if *PrintVersion {
		os.Stdout.WriteString(Version + "\n")
		os.Exit(0)
	}

	if *LogDir == "" {
		return
	}

	expanded := expandLogDirPath(*LogDir)
	lg := logger.Logger.With(zap.String("log_dir", expanded))

	expanded, err := filepath.Abs(expanded)
	if err != nil {
		lg.Fatal("failed to get absolute log dir", zap.Error(err))
	}
	if err = os.MkdirAll(expanded, 0o777); err != nil {
		lg.Fatal("failed to create log dir", zap.Error(err))
	}

	lg.Info("set log dir", zap.String("log_dir", expanded))
	logger.LogDir = expanded
	*LogDir = expanded
}

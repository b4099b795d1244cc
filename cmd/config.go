package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"profbisect.dev/pkg/profbisect/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "profbisect"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	goodFlagName           = "good"
	badFlagName            = "bad"
	deciderFlagName        = "decider"
	formatFlagName         = "format"
	outputFlagName         = "output"
	deciderTimeoutFlagName = "decider-timeout"
	seedFlagName           = "seed"
	parallelFlagName       = "parallel"
	rangeTrialsFlagName    = "range-trials"
	skipValidationFlagName = "skip-validation"
	historyFlagName        = "history"
	metricsFileFlagName    = "metrics-file"
	verboseFlagName        = "verbose"
	logFileFlagName        = "log-file"

	deciderConfigKey        = "decider"
	formatConfigKey         = "format"
	outputConfigKey         = "output"
	deciderTimeoutConfigKey = "bisect.decider_timeout"
	seedConfigKey           = "bisect.seed"
	parallelConfigKey       = "bisect.parallel"
	rangeTrialsConfigKey    = "bisect.range_trials"
	skipValidationConfigKey = "bisect.skip_validation"
	historyConfigKey        = "bisect.history"
	metricsFileConfigKey    = "metrics.file"
	plainConfigKey          = "ui.plain"

	defaultOutput         = "profbisect-report.json"
	defaultDeciderTimeout = time.Duration(0)
	defaultSeed           = int64(0)
	defaultParallel       = 1
	defaultRangeTrials    = domain.DefaultRangeTrials

	envPrefix = "PROFBISECT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".profbisect.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(deciderConfigKey, "")
	viper.SetDefault(formatConfigKey, "")
	viper.SetDefault(outputConfigKey, defaultOutput)
	viper.SetDefault(deciderTimeoutConfigKey, defaultDeciderTimeout)
	viper.SetDefault(seedConfigKey, defaultSeed)
	viper.SetDefault(parallelConfigKey, defaultParallel)
	viper.SetDefault(rangeTrialsConfigKey, defaultRangeTrials)
	viper.SetDefault(skipValidationConfigKey, false)
	viper.SetDefault(historyConfigKey, false)
	viper.SetDefault(metricsFileConfigKey, "")
	viper.SetDefault(plainConfigKey, false)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit config file path reports a missing file as a path error.
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		slog.Warn("Failed to read config file", "file", configFileName, "error", err)
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// Package config carries the run configuration of the gatepass tool: the
// command-line Conf and the toml Setting with one table per pass.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qfab-dev/gatepass/eject"
	"github.com/qfab-dev/gatepass/lowering"
)

type Conf struct {
	Version            string `long:"version" description:"version of the gatepass tool" env:"GATEPASS_VERSION"`
	Input              string `long:"input" short:"i" description:"input circuit JSON file, - for stdin" default:"-" env:"GATEPASS_INPUT"`
	Output             string `long:"output" short:"o" description:"output circuit JSON file, - for stdout" default:"-" env:"GATEPASS_OUTPUT"`
	SkipLowering       bool   `long:"skip-lowering" description:"do not run the gate-set lowering pass" env:"GATEPASS_SKIP_LOWERING"`
	SkipEject          bool   `long:"skip-eject" description:"do not run the phase-ejection pass" env:"GATEPASS_SKIP_EJECT"`
	IgnoreFailures     bool   `long:"ignore-failures" description:"forward unconvertible operations unchanged instead of failing" env:"GATEPASS_IGNORE_FAILURES"`
	SettingPath        string `long:"setting-path" description:"pass setting file path" env:"GATEPASS_SETTING_PATH"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"GATEPASS_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"GATEPASS_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"GATEPASS_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./logs" env:"GATEPASS_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"GATEPASS_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"GATEPASS_LOG_ROTATION_MAX_DAYS"`
}

// Setting is the toml-backed pass configuration.
type Setting struct {
	Lowering lowering.Setting `toml:"lowering"`
	Eject    eject.Setting    `toml:"eject"`
}

func NewSetting() Setting {
	return Setting{
		Lowering: lowering.NewSetting(),
		Eject:    eject.NewSetting(),
	}
}

// ParseSettingFromPath reads and parses a toml setting file on top of the
// defaults.
func ParseSettingFromPath(settingPath string) (Setting, error) {
	s := NewSetting()
	tomlString, err := readSettingsFile(settingPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return s, err
	}
	if err := s.parseSetting(tomlString); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func (s *Setting) parseSetting(tomlString string) error {
	if _, err := toml.Decode(tomlString, s); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	zap.L().Debug(fmt.Sprintf("Setting is %+v", *s))
	return nil
}

// Validate reports every invalid setting value at once.
func (s *Setting) Validate() error {
	var err error
	if s.Lowering.MaxIterations <= 0 {
		err = multierr.Append(err,
			fmt.Errorf("lowering.max_iterations must be positive, got %d", s.Lowering.MaxIterations))
	}
	if s.Eject.Tolerance < 0 {
		err = multierr.Append(err,
			fmt.Errorf("eject.tolerance must not be negative, got %g", s.Eject.Tolerance))
	}
	return err
}

func readSettingsFile(settingPath string) (string, error) {
	bytes, err := os.ReadFile(settingPath)
	if err != nil {
		if absolutePath, absErr := filepath.Abs(settingPath); absErr == nil {
			zap.L().Debug(fmt.Sprintf("absolute path:%s", absolutePath))
		}
		return "", err
	}
	return string(bytes), nil
}

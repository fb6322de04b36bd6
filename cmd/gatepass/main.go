package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/google/uuid"
	"github.com/massn/envordot"
	"github.com/tidwall/pretty"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"

	"github.com/qfab-dev/gatepass/circuit"
	"github.com/qfab-dev/gatepass/config"
	"github.com/qfab-dev/gatepass/eject"
	"github.com/qfab-dev/gatepass/lowering"
)

var versionByBuildFlag string
var parser *flags.Parser
var app *App

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	app = &App{}
	setParser(app)
}

type App struct {
	Conf *config.Conf
}

func setParser(app *App) {
	parser = flags.NewParser(app, flags.Default)
	parser.ShortDescription = "gatepass"
	parser.LongDescription = "lower a circuit to the native gate set and eject full rotations."
	parser.AddCommand("run", "run the passes", "lower the input circuit and eject full rotations", newRunCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func provideDIContainer(setting config.Setting) (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() lowering.Components {
		return lowering.Components{
			Caster:     lowering.DefaultCaster,
			Decomposer: lowering.DefaultDecomposer,
			Keep:       lowering.IsNative,
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func(comp lowering.Components) *lowering.Lowerer {
		return lowering.NewLowerer(setting.Lowering, comp)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() *eject.Optimizer {
		return eject.NewOptimizer(setting.Eject)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func zapLogger(conf *config.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		stdoutCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, stdoutCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "gatepass-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

type runCmd struct{}

func newRunCmd() *runCmd {
	return &runCmd{}
}

func (r *runCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()
	config.SetVersion(app.Conf, versionByBuildFlag)

	setting := config.NewSetting()
	if app.Conf.SettingPath != "" {
		parsed, err := config.ParseSettingFromPath(app.Conf.SettingPath)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
			return err
		}
		setting = parsed
	}
	if app.Conf.IgnoreFailures {
		setting.Lowering.IgnoreFailures = true
	}

	container, err := provideDIContainer(setting)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up DI container/reason:%s", err))
		return err
	}

	runID := uuid.NewString()
	zap.L().Info(fmt.Sprintf("run %s/input:%s/output:%s", runID, app.Conf.Input, app.Conf.Output))

	return container.Invoke(func(l *lowering.Lowerer, o *eject.Optimizer) error {
		data, err := readInput(app.Conf.Input)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to read input/reason:%s", err))
			return err
		}
		circ, err := circuit.Decode(data)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to decode circuit/reason:%s", err))
			return err
		}
		if err := circ.Validate(); err != nil {
			zap.L().Error(fmt.Sprintf("invalid circuit/reason:%s", err))
			return err
		}
		if !app.Conf.SkipLowering {
			if err := l.LowerCircuit(circ); err != nil {
				zap.L().Error(fmt.Sprintf("lowering failed/reason:%s", err))
				return err
			}
		}
		if !app.Conf.SkipEject {
			o.OptimizeCircuit(circ)
		}
		encoded, err := circuit.Encode(circ)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to encode circuit/reason:%s", err))
			return err
		}
		if err := writeOutput(app.Conf.Output, encoded); err != nil {
			zap.L().Error(fmt.Sprintf("failed to write output/reason:%s", err))
			return err
		}
		zap.L().Info(fmt.Sprintf("run %s finished with %d moment(s)", runID, len(circ.Moments)))
		return nil
	})
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(pretty.Pretty(data))
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func setZap(conf *config.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	return logger
}

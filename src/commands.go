package main

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/datasource/file"
	"DelayClassifier/src/pipeline"
	"DelayClassifier/src/storage"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/robfig/cron"
	"go.uber.org/zap"
)

var (
	configFile   string
	inputPath    string
	heatmapPath  string
	htmlPath     string
	workbookPath string
	interval     string
)

func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&configFile, "config", "", "JSON config file (defaults apply when empty)")
	fs.StringVar(&inputPath, "input", "", "Input csv/xlsx file, overrides input.path")
	fs.StringVar(&heatmapPath, "out", "", "Confusion matrix PNG, overrides report.heatmap")
	fs.StringVar(&htmlPath, "html", "", "Optional echarts HTML page")
	fs.StringVar(&workbookPath, "xlsx", "", "Optional xlsx workbook")
}

// app 一个进程内的配置、日志和运行锁
type app struct {
	cfg    *config.Config
	logger *storage.Logger
	mu     sync.Mutex
}

func newApp() (*app, error) {
	dir, name := filepath.Split(configFile)
	cfg, err := config.LoadConfig(dir, name)
	if err != nil {
		return nil, err
	}
	if inputPath != "" {
		cfg.Input.Path = inputPath
	}
	if heatmapPath != "" {
		cfg.Report.Heatmap = heatmapPath
	}
	if htmlPath != "" {
		cfg.Report.HTML = htmlPath
	}
	if workbookPath != "" {
		cfg.Report.Workbook = workbookPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.Log.Name)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// runOnce 同一时间只有一次运行，结束后检查日志大小
func (a *app) runOnce() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := pipeline.Run(a.cfg, a.logger, os.Stdout)
	if err != nil {
		a.logger.Error("处理失败", zap.Error(err))
	}
	if rotated, rerr := a.logger.CheckRotate(a.cfg.Log); rerr != nil {
		a.logger.Error("日志轮转失败", zap.Error(rerr))
	} else if rotated {
		a.logger.Info("日志已轮转", zap.String("file", a.cfg.Log.Name))
	}
	return err
}

// handleSignals SIGINT/SIGTERM 取消 ctx，SIGHUP 重新打开日志文件
func (a *app) handleSignals(cancel context.CancelFunc) {
	file.SetupSignalHandler(cancel)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if err := a.logger.Reopen(a.cfg.Log.Name); err != nil {
				fmt.Fprintf(os.Stderr, "reopen log: %v\n", err)
				continue
			}
			a.logger.Info("日志文件已重新打开", zap.String("file", a.cfg.Log.Name))
		}
	}()
}

func runPipeline(cmd *commander.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()
	return a.runOnce()
}

func watchInput(cmd *commander.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.handleSignals(cancel)

	monitor, err := file.NewFileMonitor(a.cfg.Input.Path)
	if err != nil {
		return err
	}
	defer monitor.Close()

	// 启动时先处理一次现有文件
	if _, err := os.Stat(a.cfg.Input.Path); err == nil {
		a.runOnce()
	}

	a.logger.Info("文件监控已启动，按Ctrl+C退出", zap.String("input", a.cfg.Input.Path))
	return monitor.Watch(ctx, func(path string) {
		a.logger.Info("检测到输入文件更新", zap.String("file", path))
		a.runOnce()
	})
}

func scheduleRuns(cmd *commander.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	every := time.Duration(a.cfg.Watch.CheckInterval)
	if interval != "" {
		if every, err = time.ParseDuration(interval); err != nil {
			return fmt.Errorf("invalid -every: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.handleSignals(cancel)

	// 设置定时任务
	c := cron.New()
	cronSpec := fmt.Sprintf("@every %s", every)
	if err := c.AddFunc(cronSpec, func() {
		a.logger.Info("开始定时处理", zap.String("spec", cronSpec))
		a.runOnce()
	}); err != nil {
		return fmt.Errorf("创建定时任务失败: %w", err)
	}

	c.Start()
	defer c.Stop()

	a.logger.Info("定时处理已启动，按Ctrl+C退出", zap.Duration("interval", every))
	<-ctx.Done()
	return nil
}

func RunCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runPipeline,
		UsageLine: "run [-config file] [-input file] [-out png]",
		Short:     "run the classification pipeline once",
		Long: `
load the flight table, clean, encode, split, train the random forest and
knn classifiers, print both reports and save the confusion matrices

	$ ./flightdelay run -input flight_delays.csv -out confusion_matrices.png

`,
		Flag: *flag.NewFlagSet("run", flag.ExitOnError),
	}
	commonFlags(&cmd.Flag)
	return cmd
}

func WatchCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       watchInput,
		UsageLine: "watch [-config file] [-input file]",
		Short:     "re-run the pipeline whenever the input file changes",
		Long: `
watch the directory of the input file and re-run the pipeline each time the
file is written or replaced; SIGHUP reopens the log file

	$ ./flightdelay watch -config config/config.json

`,
		Flag: *flag.NewFlagSet("watch", flag.ExitOnError),
	}
	commonFlags(&cmd.Flag)
	return cmd
}

func ScheduleCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       scheduleRuns,
		UsageLine: "schedule [-config file] [-every duration]",
		Short:     "re-run the pipeline on a fixed interval",
		Long: `
re-run the pipeline every watch.check_interval (or -every)

	$ ./flightdelay schedule -every 30m

`,
		Flag: *flag.NewFlagSet("schedule", flag.ExitOnError),
	}
	commonFlags(&cmd.Flag)
	cmd.Flag.StringVar(&interval, "every", "", "Run interval, overrides watch.check_interval")
	return cmd
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/config"
	"github.com/hubs-api/hubs-api/internal/hubs"
	"github.com/hubs-api/hubs-api/internal/logging"
	"github.com/hubs-api/hubs-api/internal/metrics"
	"github.com/hubs-api/hubs-api/internal/server"
	"github.com/hubs-api/hubs-api/internal/server/routes"
	"github.com/hubs-api/hubs-api/internal/store"
	"github.com/hubs-api/hubs-api/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts)
	stop()
	os.Exit(code)
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(ctx context.Context, opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["listen_port"] = cfg.Global.ListenPort
		fields["store"] = cfg.Store.Summary()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 存储 → 指标装饰 → Fiber app → 路由（兜底最后）。
	db, closer, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化存储失败: %v\n", err)
		return 1
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.WithError(err).WithField("action", "store_close").Warn("关闭存储失败")
		}
	}()

	var m *metrics.Metrics
	if cfg.Global.MetricsEnabled {
		m = metrics.New()
		db = metrics.InstrumentDatabase(db, m)
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["store"] = cfg.Store.Summary()
	fields["metrics"] = cfg.Global.MetricsEnabled
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(ctx, cfg, db, m, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("hubs-api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（可被 HUBS_API_CONFIG 指定，留空则仅使用默认值与环境变量）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("HUBS_API_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func buildApp(cfg *config.Config, db hubs.Database, m *metrics.Metrics, logger *logrus.Logger) (*fiber.App, error) {
	app, err := server.NewApp(server.AppOptions{
		Logger:    logger,
		Metrics:   m,
		BodyLimit: cfg.Global.BodyLimit,
	})
	if err != nil {
		return nil, err
	}

	deps := routes.Dependencies{
		Database: db,
		Logger:   logger,
		Clock:    time.Now,
	}
	if m != nil {
		deps.Gatherer = m.Registry
	}
	routes.Register(app, deps)
	return app, nil
}

// startHTTPServer 阻塞直到监听失败或 ctx 结束；ctx 结束时按 ShutdownTimeout 优雅退出。
func startHTTPServer(ctx context.Context, cfg *config.Config, db hubs.Database, m *metrics.Metrics, logger *logrus.Logger) error {
	app, err := buildApp(cfg, db, m, logger)
	if err != nil {
		return err
	}

	port := cfg.Global.ListenPort
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.WithFields(logrus.Fields{
			"action":  "shutdown",
			"timeout": cfg.Global.ShutdownTimeout.DurationValue().String(),
		}).Info("收到退出信号，停止接收新请求")
		return app.ShutdownWithTimeout(cfg.Global.ShutdownTimeout.DurationValue())
	}
}

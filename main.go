package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/config"
	"github.com/any-hub/fsprovider/internal/logging"
	"github.com/any-hub/fsprovider/internal/metrics"
	"github.com/any-hub/fsprovider/internal/provider"
	"github.com/any-hub/fsprovider/internal/server"
	"github.com/any-hub/fsprovider/internal/server/routes"
	"github.com/any-hub/fsprovider/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

const shutdownTimeout = 10 * time.Second

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
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
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
		fields["providers"] = len(cfg.Providers)
		fields["roots"] = config.ProviderRoots(cfg.Providers)
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// CLI 启动遵循“配置 → 缓存注册表 → Provider → Fiber server”顺序，
	// 关闭时逆序执行：先停止 HTTP，再停用 Provider，最后关闭注册表。
	caches := cache.NewRegistry(logger)
	defer caches.Close()
	promMetrics := metrics.New("fsprovider", caches)

	providers, err := activateProviders(ctx, cfg, caches, promMetrics, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "激活 Provider 失败: %v\n", err)
		return 1
	}
	defer deactivateProviders(providers)

	fields := logging.BaseFields("startup", opts.configPath)
	fields["providers"] = len(cfg.Providers)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["roots"] = config.ProviderRoots(cfg.Providers)
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	app, err := buildApp(cfg, providers, caches, promMetrics, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建 HTTP 服务失败: %v\n", err)
		return 1
	}
	if err := startHTTPServer(ctx, app, cfg.Global.ListenPort, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("fsprovider", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 FSPROVIDER_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("FSPROVIDER_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

// activateProviders 依配置顺序激活 Provider；任一失败时停用已激活的部分。
func activateProviders(ctx context.Context, cfg *config.Config, caches *cache.Registry, promMetrics *metrics.Metrics, logger *logrus.Logger) ([]*provider.Provider, error) {
	providers := make([]*provider.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		if info, err := os.Stat(pc.File); err != nil || !info.IsDir() {
			logger.WithFields(logging.ProviderFields(pc.Name, pc.Root)).
				WithField("file", pc.File).
				Warn("provider directory is missing, serving an empty tree until it appears")
		}

		rt := cfg.BuildProviderRuntime(pc)
		p, err := provider.Activate(rt, osfs.New(pc.File), caches, logger,
			provider.WithContext(ctx),
			provider.WithEventListener(promMetrics.FileEventListener(pc.Name)),
		)
		if err != nil {
			deactivateProviders(providers)
			return nil, fmt.Errorf("provider %s: %w", pc.Name, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func deactivateProviders(providers []*provider.Provider) {
	for i := len(providers) - 1; i >= 0; i-- {
		providers[i].Deactivate()
	}
}

func buildApp(cfg *config.Config, providers []*provider.Provider, caches *cache.Registry, promMetrics *metrics.Metrics, logger *logrus.Logger) (*fiber.App, error) {
	registry, err := server.NewProviderRegistry(providers)
	if err != nil {
		return nil, err
	}
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Providers:  registry,
		Observer:   promMetrics,
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		return nil, err
	}
	routes.RegisterDiagnosticsRoutes(app, routes.DiagnosticsOptions{
		Logger:    logger,
		Providers: registry,
		Caches:    caches,
		Metrics:   promMetrics.Handler(),
	})
	routes.RegisterFormatRoutes(app, registry)
	return app, nil
}

// startHTTPServer 阻塞运行 Fiber，ctx 取消（SIGINT/SIGTERM）后优雅关闭。
func startHTTPServer(ctx context.Context, app *fiber.App, port int, logger *logrus.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"action": "listen",
			"port":   port,
		}).Info("Fiber 服务启动")
		return app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.WithField("action", "shutdown").Info("Fiber 服务关闭")
		if err := app.ShutdownWithContext(shutdownCtx); err != nil && ctx.Err() != nil {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

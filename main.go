package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/steam-top/steam-top/internal/config"
	"github.com/steam-top/steam-top/internal/imagecache"
	"github.com/steam-top/steam-top/internal/importer"
	"github.com/steam-top/steam-top/internal/logging"
	"github.com/steam-top/steam-top/internal/scorecard"
	"github.com/steam-top/steam-top/internal/server"
	"github.com/steam-top/steam-top/internal/steam"
	"github.com/steam-top/steam-top/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	importMode  bool
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

	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["listen_port"] = cfg.Server.ListenPort
		fields["image_type"] = cfg.Image.ImageType
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	if opts.importMode {
		return runImport(opts, cfg, logger)
	}

	return runServer(opts, cfg, logger)
}

// runImport 执行一次完整的榜单导入。锁被占用说明上一次导入尚未结束，
// 属于正常调度撞车，按成功退出，避免 cron 邮件告警。
func runImport(opts cliOptions, cfg *config.Config, logger *logrus.Logger) int {
	imp, err := buildImporter(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建导入器失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("import_start", opts.configPath)
	fields["limit"] = cfg.Import.ImportLimit
	fields["image_type"] = cfg.Image.ImageType
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("导入开始")

	if err := imp.Run(context.Background()); err != nil {
		if errors.Is(err, importer.ErrLockHeld) {
			logger.WithFields(logging.BaseFields("import_skipped", opts.configPath)).
				Info("已有导入在进行，本次跳过")
			return 0
		}
		fmt.Fprintf(stdErr, "导入失败: %v\n", err)
		return 1
	}
	return 0
}

func buildImporter(cfg *config.Config, logger *logrus.Logger) (*importer.Importer, error) {
	httpClient := steam.NewHTTPClient(cfg.Import.HTTPTimeout.DurationValue())

	store, err := steam.NewStoreClient(steam.StoreOptions{
		Client:   httpClient,
		CacheDir: cfg.Import.AppDetailsCacheDir,
		CacheTTL: cfg.Import.AppDetailsCacheTTL.DurationValue(),
		MinDelay: cfg.Import.StoreMinDelay.DurationValue(),
		Region:   cfg.Import.Region,
		Language: cfg.Import.Language,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	kind, err := steam.ParseImageKind(cfg.Image.ImageType)
	if err != nil {
		return nil, err
	}
	maxW, maxH := kind.SizeCap()

	images, err := imagecache.New(imagecache.Options{
		Dir:        cfg.Image.CacheDir,
		PublicURL:  cfg.Image.CachePublicURL,
		PreferWebP: cfg.Image.PreferWebP,
		Timeout:    cfg.Import.HTTPTimeout.DurationValue(),
		MaxWidth:   maxW,
		MaxHeight:  maxH,
		Quality:    cfg.Image.Quality,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return importer.New(importer.Options{
		Config: cfg,
		Logger: logger,
		Charts: steam.NewChartsClient(httpClient, ""),
		Store:  store,
		Images: images,
	})
}

// runServer 启动 HTTP 服务。成绩卡渲染器构建失败不阻塞启动，对应路由
// 会持续返回 503。
func runServer(opts cliOptions, cfg *config.Config, logger *logrus.Logger) int {
	var renderer *scorecard.Renderer
	if cfg.Server.ScorecardTemplate != "" {
		r, err := scorecard.NewRenderer(cfg.Server.ScorecardTemplate, cfg.Server.TaglinesFile)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"action": "scorecard_init_failed",
				"error":  err.Error(),
			}).Warn("成绩卡渲染器不可用")
		} else {
			renderer = r
		}
	}

	serverOpts := server.Options{
		Logger:     logger,
		ListenPort: cfg.Server.ListenPort,
		DataFile:   cfg.Import.DataFile,
		Scorecard:  renderer,
	}
	if cfg.Image.CachePublicURL != "" && cfg.Image.CachePublicURL[0] == '/' {
		serverOpts.ImageDir = cfg.Image.CacheDir
		serverOpts.ImagePublicPath = cfg.Image.CachePublicURL
	}

	app, err := server.NewApp(serverOpts)
	if err != nil {
		fmt.Fprintf(stdErr, "构建 HTTP 服务失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Server.ListenPort
	fields["data_file"] = cfg.Import.DataFile
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.ListenPort)); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("steam-top", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		importMode bool
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 STEAM_TOP_CONFIG 覆盖）")
	fs.BoolVar(&importMode, "import", false, "执行一次榜单导入后退出")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("STEAM_TOP_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		importMode:  importMode,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mod-mirror/mod-mirror/internal/config"
	"github.com/mod-mirror/mod-mirror/internal/engine"
	"github.com/mod-mirror/mod-mirror/internal/logging"
	"github.com/mod-mirror/mod-mirror/internal/platform"
	"github.com/mod-mirror/mod-mirror/internal/queue"
	"github.com/mod-mirror/mod-mirror/internal/server"
	"github.com/mod-mirror/mod-mirror/internal/store"
	"github.com/mod-mirror/mod-mirror/internal/urlcache"
	"github.com/mod-mirror/mod-mirror/internal/version"
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
		fields["platforms"] = cfg.EnabledPlatforms()
		fields["mirror_mode"] = cfg.Global.MirrorMode()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动遵循“配置 → 外部连接 → 决策引擎 → Fiber server”顺序，
	// 保证所有请求共享同一组缓存与队列连接。
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Global.RedisAddr,
		Password: cfg.Global.RedisPassword,
		DB:       cfg.Global.RedisDB,
	})
	defer redisClient.Close()

	redirectCache, err := urlcache.NewRedisCache(redisClient, cfg.Global.RedirectCacheTTL.DurationValue())
	if err != nil {
		fmt.Fprintf(stdErr, "初始化重定向缓存失败: %v\n", err)
		return 1
	}

	mongoClient, err := connectMongo(cfg.Global.MongoURI)
	if err != nil {
		fmt.Fprintf(stdErr, "连接 MongoDB 失败: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()
	lookup := store.NewMongoLookup(mongoClient.Database(cfg.Global.MongoDatabase))

	dispatcher, err := queue.NewAMQPDispatcher(cfg.Global.QueueURL)
	if err != nil {
		fmt.Fprintf(stdErr, "连接任务队列失败: %v\n", err)
		return 1
	}
	defer dispatcher.Close()

	decider, err := engine.New(engine.Options{
		Cache:       redirectCache,
		Lookup:      lookup,
		Dispatcher:  dispatcher,
		Logger:      logger,
		MirrorBase:  cfg.Global.MirrorBase,
		OriginBases: originBases(cfg),
		Accelerated: cfg.Global.Aria2,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "构建决策引擎失败: %v\n", err)
		return 1
	}

	respCache := server.NewResponseCache(cfg.Global.ResponseCacheTTL.DurationValue())
	defer respCache.Stop()

	fields := logging.BaseFields("startup", opts.configPath)
	fields["platforms"] = cfg.EnabledPlatforms()
	fields["listen_port"] = cfg.Global.ListenPort
	fields["mirror_mode"] = cfg.Global.MirrorMode()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, decider, respCache, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("mod-mirror", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 MOD_MIRROR_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("MOD_MIRROR_CONFIG")
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

// connectMongo 建立并验证 MongoDB 连接。
func connectMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// originBases 汇总各启用平台的 CDN 根地址。
func originBases(cfg *config.Config) map[platform.Platform]string {
	bases := make(map[platform.Platform]string)
	if cfg.Modrinth.Enabled {
		bases[platform.Modrinth] = cfg.Modrinth.OriginBase
	}
	if cfg.Curseforge.Enabled {
		bases[platform.Curseforge] = cfg.Curseforge.OriginBase
	}
	return bases
}

func startHTTPServer(cfg *config.Config, decider server.Decider, respCache *server.ResponseCache, logger *logrus.Logger) error {
	app, err := server.NewApp(server.AppOptions{
		Logger:        logger,
		Engine:        decider,
		ResponseCache: respCache,
		Config:        cfg,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   cfg.Global.ListenPort,
	}).Info("Fiber 服务启动")

	return app.Listen(server.ListenAddr(cfg))
}

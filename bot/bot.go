package bot

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"blobqueue/command"
	"blobqueue/config"
	"blobqueue/db"
	"blobqueue/events"
	"blobqueue/handler"
	"blobqueue/handler/blobs"
	"blobqueue/logging"
	"blobqueue/queue"
	"blobqueue/utils"
	"blobqueue/vote"
)

// Start 启动机器人, 阻塞直到收到退出信号
func Start(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("加载配置文件时出错: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.Redis.Addr != "" {
		rp, err := events.NewRedisPublisher(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Event publishing disabled", zap.Error(err))
		} else {
			defer rp.Close()
			publisher = rp
		}
	}

	// 使用提供的机器人令牌创建一个新的 Discord 会话
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("创建 Discord 会话时出错: %w", err)
	}

	messenger := blobs.NewMessenger(dg, cfg.Queue, logger)
	assets := blobs.NewAssets(dg, blobs.NewHTTPClient(), cfg.Queue.BufferGuildID, cfg.Queue.MaxAssetBytes, logger)
	notifier := utils.NewDMNotifier(dg, logger)

	svc := queue.NewService(store, queue.Deps{
		Messenger: messenger,
		Assets:    assets,
		Notifier:  notifier,
		Events:    publisher,
	}, queue.Options{
		Thresholds: vote.Thresholds{
			RequiredVotes:      cfg.Queue.RequiredVotes,
			RequiredDifference: cfg.Queue.RequiredDifference,
		},
		CompareTimeout: cfg.Queue.CompareTimeout,
		VerboseCompare: cfg.Queue.VerboseCompare,
		MaxNoteLength:  cfg.Queue.MaxNoteLength,
	}, logger)

	h := blobs.NewHandler(svc, dg, messenger, assets, notifier, cfg.Queue, cfg.Commands.Auth, logger)
	router := handler.NewRouter()
	h.Register(router)
	registerEventHandlers(dg, router, h)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	defer dg.Close()

	for _, guildID := range cfg.Commands.Allowguils {
		for _, cmd := range command.AllCommands {
			if _, err := dg.ApplicationCommandCreate(dg.State.User.ID, guildID, cmd); err != nil {
				return fmt.Errorf("cannot create '%v' command: %w", cmd.Name, err)
			}
		}
	}

	ops := startOpsServer(cfg.Metrics.Addr, newOpsRouter(store, func() bool { return dg.DataReady }), logger)

	scheduler, err := newScheduler(ctx, svc, cfg.Reconcile.Spec, logger)
	if err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", cfg.Reconcile.Spec, err)
	}
	scheduler.Start()

	logger.Info("Bot is now running. Press CTRL-C to exit.", zap.String("user", dg.State.User.String()))
	<-ctx.Done()
	logger.Info("Shutting down")

	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Ops server shutdown", zap.Error(err))
	}
	return nil
}

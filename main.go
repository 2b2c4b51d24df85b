package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qartelbot/config"
	"qartelbot/cron"
	"qartelbot/database"
	"qartelbot/database/repository"
	"qartelbot/handlers"
	"qartelbot/routes"
	"qartelbot/services/conversation"
	"qartelbot/services/document"
	"qartelbot/services/expense"
	"qartelbot/services/messenger"
	"qartelbot/services/session"
	"qartelbot/services/storage"
	"qartelbot/services/tasks"
	"qartelbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	fetchTimeout   = time.Minute
	dispatchBuffer = 64
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()

	// repositories.
	userRepo := repository.NewMongoUserRepo()
	counterpartyRepo := repository.NewMongoCounterpartyRepo()
	trustRepo := repository.NewMongoTrustRepo()
	projectRepo := repository.NewMongoProjectRepo()

	var healthClients []*redis.Client

	var sessions session.Store
	if config.UseRedisSessions() {
		client := utils.GetSessionCacheClient()
		sessions = session.NewRedisStore(client, config.AppConfig.SessionTTL)
		healthClients = append(healthClients, client)
		logger.Info("conversation state in redis", zap.Duration("ttl", config.AppConfig.SessionTTL))
	} else {
		sessions = session.NewMemoryStore()
		logger.Info("conversation state in memory")
	}

	cld, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}
	storageService := storage.NewStorageService(cld, logger)

	var purger conversation.AssetPurger
	if config.AppConfig.PurgeQueue {
		queue := asynq.NewClient(cron.QueueRedisOpt())
		defer queue.Close()
		purger = tasks.NewQueuePurger(queue)
		stopWorker := cron.InitPurgeWorker(storageService, logger)
		defer stopWorker()
		queueClient := utils.NewQueueClient()
		defer queueClient.Close()
		healthClients = append(healthClients, queueClient)
	} else {
		purger = tasks.NewInlinePurger(storageService)
	}

	fetcher := document.NewHTTPFetcher(fetchTimeout)
	renderer := document.NewRenderer(fetcher, map[document.Template]string{
		document.TemplateContract: config.AppConfig.TemplateContractURL,
		document.TemplateAppendix: config.AppConfig.TemplateAppendixURL,
		document.TemplateWaybill:  config.AppConfig.TemplateWaybillURL,
		document.TemplateTrust:    config.AppConfig.TemplateTrustURL,
	}, logger)

	expenses := expense.NewClient(config.AppConfig.AppsScriptURL, config.AppConfig.ExpenseTimeout, logger)

	bot, err := tgbotapi.NewBotAPI(config.AppConfig.BotToken)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to telegram: %v", err)
	}
	bot.Debug = config.AppConfig.BotDebug
	logger.Info("authorized on telegram", zap.String("bot", bot.Self.UserName))

	engine, err := conversation.NewEngine(conversation.Deps{
		Messenger:      messenger.NewTelegramMessenger(bot, logger),
		Users:          userRepo,
		Counterparties: counterpartyRepo,
		Trusts:         trustRepo,
		Projects:       projectRepo,
		Renderer:       renderer,
		Fetcher:        fetcher,
		Expenses:       expenses,
		Storage:        storageService,
		Purger:         purger,
		Sessions:       sessions,
	}, conversation.Settings{
		NotifyChatID:     config.AppConfig.NotifyChatID,
		GroupChatID:      config.AppConfig.GroupChatID,
		ReservedSheets:   config.AppConfig.ExpenseReservedSheets,
		PersonalSheet:    config.AppConfig.ExpensePersonalSheet,
		Contributors:     config.AppConfig.ExpenseContributors,
		PresentationURL:  config.AppConfig.AssetPresentationURL,
		CardPrimaryURL:   config.AppConfig.AssetCardPrimaryURL,
		CardSecondaryURL: config.AppConfig.AssetCardSecondaryURL,
	}, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	dispatcher := handlers.NewDispatcher(engine, config.AppConfig.DispatchWorkers, dispatchBuffer, logger)
	// Workers drain queued events after shutdown starts, so they do not share ctx.
	dispatcher.Start(context.Background())

	handlerBundle := &handlers.HandlerBundle{
		Health: handlers.HealthHandler(utils.GetHealthStatus),
	}
	if config.AppConfig.WebhookURL != "" {
		if err := registerWebhook(bot, config.AppConfig.WebhookURL, config.AppConfig.WebhookSecret); err != nil {
			logger.Sugar().Fatalf("main: failed to register webhook: %v", err)
		}
		webhook := handlers.NewWebhookHandler(ctx, dispatcher, config.AppConfig.WebhookSecret, logger)
		handlerBundle.TelegramWebhook = webhook.ReceiveUpdate
		logger.Info("receiving updates by webhook", zap.String("url", config.AppConfig.WebhookURL))
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logger.Warn("failed to delete webhook before polling", zap.Error(err))
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		go dispatcher.Poll(ctx, bot.GetUpdatesChan(u))
		logger.Info("receiving updates by long polling")
	}

	utils.StartHealthMonitor(ctx, healthClients, database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	bot.StopReceivingUpdates()
	dispatcher.Stop()
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// registerWebhook points Telegram at url. The secret token is sent back by
// Telegram on every delivery.
func registerWebhook(bot *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": strings.TrimSpace(url)}
	if secret != "" {
		params["secret_token"] = secret
	}
	_, err := bot.MakeRequest("setWebhook", params)
	return err
}

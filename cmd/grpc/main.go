package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	countv1 "github.com/fekuna/omnipos-stockcount-service/api/countv1"
	"github.com/fekuna/omnipos-stockcount-service/config"
	"github.com/fekuna/omnipos-stockcount-service/internal/auth"
	catRepoPkg "github.com/fekuna/omnipos-stockcount-service/internal/catalog/repository"
	cycleH "github.com/fekuna/omnipos-stockcount-service/internal/cycle/handler"
	cycleListenerPkg "github.com/fekuna/omnipos-stockcount-service/internal/cycle/listener"
	cycleRepoPkg "github.com/fekuna/omnipos-stockcount-service/internal/cycle/repository"
	cycleUCPkg "github.com/fekuna/omnipos-stockcount-service/internal/cycle/usecase"
	"github.com/fekuna/omnipos-stockcount-service/internal/database"
	"github.com/fekuna/omnipos-stockcount-service/internal/ledger"
	"github.com/fekuna/omnipos-stockcount-service/internal/lock"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/fekuna/omnipos-stockcount-service/internal/report"
	"github.com/fekuna/omnipos-stockcount-service/internal/scheduler"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	policy, err := ledger.ParseStockPolicy(cfg.Count.StockPolicy)
	if err != nil {
		appLogger.Fatal("Invalid stock policy", zap.Error(err))
	}

	// 3. Connect to Database
	db := openDatabase(cfg, appLogger)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		appLogger.Fatal("Could not migrate database", zap.Error(err))
	}

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewSQLRepository(db)
	cycleRepo := cycleRepoPkg.NewSQLRepository(db)

	// 5. Sector locks
	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Lock.UseRedis {
		redisClient, err := lock.NewRedisClient(&lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, cfg.Lock.TTL, cfg.Lock.Retries, cfg.Lock.Backoff)
		appLogger.Info("Using Redis sector locks", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Change notifications
	broadcaster := notify.NewBroadcaster(cfg.Count.NotifyBuffer)
	publishers := notify.Fanout{broadcaster}
	if cfg.Kafka.Enabled {
		kafkaPublisher := notify.NewKafkaPublisher(
			notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, appLogger), appLogger)
		defer kafkaPublisher.Close()
		publishers = append(publishers, kafkaPublisher)
		appLogger.Info("Publishing count events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	}

	// 7. Initialize UseCases
	cycleUC := cycleUCPkg.NewCycleUseCase(cycleRepo, catRepo, locker, publishers, policy, appLogger)

	// 8. Report listener
	if cfg.Kafka.Enabled && cfg.Elastic.Enabled {
		esClient, err := report.NewClient(&report.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not create Elasticsearch client, cycle reports disabled", zap.Error(err))
		} else {
			consumer := cycleListenerPkg.NewConsumer(&cycleListenerPkg.ConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.EventsTopic,
				GroupID: cfg.Kafka.GroupID,
			})
			defer consumer.Close()
			indexer := report.NewElasticIndexer(esClient, cfg.Elastic.Index, appLogger)
			go cycleListenerPkg.NewReportListener(consumer, cycleUC, indexer, appLogger).Start(ctx)
		}
	}

	// 9. Heartbeat
	heartbeat := scheduler.NewHeartbeatScheduler(cycleUC, publishers, appLogger,
		cfg.Scheduler.HeartbeatSpec, cfg.Scheduler.HeartbeatTimeout)
	if err := heartbeat.Start(); err != nil {
		appLogger.Fatal("Could not start heartbeat", zap.Error(err))
	}

	// 10. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.ContextInterceptor(appLogger)),
		grpc.StreamInterceptor(auth.StreamContextInterceptor(appLogger)),
	)
	countv1.RegisterCountServiceServer(grpcServer, cycleH.NewCountHandler(cycleUC, broadcaster, appLogger))

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	heartbeat.Stop()
	// Open WatchCycle streams only end with their clients, so cap the wait.
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		grpcServer.Stop()
	}
	appLogger.Info("Server stopped")
}

func openDatabase(cfg *config.Config, appLogger logger.ZapLogger) *sqlx.DB {
	if cfg.Storage.Driver == "sqlite" {
		db, err := database.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			appLogger.Fatal("Could not open SQLite database", zap.Error(err))
		}
		appLogger.Info("Opened SQLite database", zap.String("path", cfg.Storage.SQLitePath))
		return db
	}

	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	return db
}

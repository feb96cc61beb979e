package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/config"
	appHTTP "github.com/harvestlink/harvest-backend-go/internal/handler/http"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/cron"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/crypto"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/jwt"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/qrtoken"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/ratelimit"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/sms"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/sse"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/storage"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/utils"
	"github.com/harvestlink/harvest-backend-go/internal/repository/postgresql"
	attendanceService "github.com/harvestlink/harvest-backend-go/internal/service/attendance"
	baseService "github.com/harvestlink/harvest-backend-go/internal/service/base"
	"github.com/harvestlink/harvest-backend-go/internal/service/file"
	oplogService "github.com/harvestlink/harvest-backend-go/internal/service/oplog"
	salaryService "github.com/harvestlink/harvest-backend-go/internal/service/salary"
	userService "github.com/harvestlink/harvest-backend-go/internal/service/user"
	workerService "github.com/harvestlink/harvest-backend-go/internal/service/worker"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if cfg.App.RunMigrations {
		if err := postgresql.Migrate(db); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
	}

	cipher, err := crypto.NewCipher(cfg.Crypto.Key)
	if err != nil {
		log.Fatal("Failed to initialize cipher: ", err)
	}
	codec := qrtoken.NewCodec(cipher, cfg.Crypto.QRTokenTTL)

	calendar, err := utils.NewBusinessCalendar(cfg.App.BusinessTimezone)
	if err != nil {
		log.Fatal("Failed to load business timezone: ", err)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}
	fileService := file.NewFileService(fileStorage)

	smsSender, err := sms.NewGatewaySender(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize SMS sender: ", err)
	}
	if !smsSender.Configured() {
		slog.Warn("SMS gateway not configured, sign-up confirmations will be skipped")
	}

	workerRepo := postgresql.NewWorkerRepository(db, cipher)
	baseRepo := postgresql.NewBaseRepository(db)
	jobRepo := postgresql.NewJobRepository(db)
	signupRepo := postgresql.NewSignupRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db, salaryRepo)
	oplogRepo := postgresql.NewOplogRepository(db)

	opLogger := oplogService.NewLogger(oplogRepo)
	scopeResolver := userService.NewScopeResolver(baseRepo)

	workerSvc := workerService.NewWorkerService(workerRepo, opLogger)
	baseSvc := baseService.NewBaseService(baseRepo, jobRepo, scopeResolver)
	attendanceSvc := attendanceService.NewAttendanceService(
		signupRepo,
		workerRepo,
		baseRepo,
		jobRepo,
		codec,
		calendar,
		smsSender,
		opLogger,
		scopeResolver,
	)
	salarySvc := salaryService.NewSalaryService(salaryRepo, signupRepo, jobRepo, opLogger)
	paymentSvc := salaryService.NewPaymentService(paymentRepo, salaryRepo, fileService, opLogger)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, workerRepo).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting disabled", "error", err)
	}
	var limiterClient redis.Cmdable
	if rdb != nil {
		limiterClient = rdb
		defer rdb.Close()
	}
	limiter := ratelimit.NewLimiter(limiterClient, cfg.RateLimit.CheckInLimit, cfg.RateLimit.Window)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(cfg, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService),
		Worker:     appHTTP.NewWorkerHandler(workerSvc),
		Base:       appHTTP.NewBaseHandler(baseSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, scopeResolver, sse.NewHub()),
		Salary:     appHTTP.NewSalaryHandler(salarySvc, paymentSvc),
	}, limiter)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

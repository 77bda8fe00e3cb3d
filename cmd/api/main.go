package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"gogotalk/internal/adapter/api"
	"gogotalk/internal/adapter/api/handler"
	apimiddleware "gogotalk/internal/adapter/api/middleware"
	"gogotalk/internal/adapter/api/router"
	"gogotalk/internal/adapter/repository"
	domainrepo "gogotalk/internal/domain/repository"
	"gogotalk/internal/domain/service"
	"gogotalk/internal/infrastructure/firebase"
	"gogotalk/internal/infrastructure/kvstore"
	"gogotalk/internal/infrastructure/storage"
	"gogotalk/internal/infrastructure/tracing"
	"gogotalk/internal/infrastructure/websocket"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OtelEndpoint, cfg.OtelServiceName, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	var opt option.ClientOption
	if cfg.ServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))
	} else {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		opt = option.WithCredentialsFile(cfg.ServiceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	objectStorage, err := newObjectStorage(ctx, cfg, opt)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	defer objectStorage.Close()

	kv, err := newKeyValueStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer kv.Close()

	firebaseAuthClient, err := firebase.NewFirebaseAuthClient(ctx, authClient, cfg.FirebaseApiKey)
	if err != nil {
		log.Fatalf("Failed to initialize auth client: %v", err)
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	session := usecase.NewSessionHolder(firebaseAuthClient)

	ledger := usecase.NewUnreadLedger(kv)
	if err := ledger.Load(ctx); err != nil {
		log.Printf("Starting with an empty unread ledger: %v", err)
	}

	themeSettings := usecase.NewThemeSettings(kv)
	if err := themeSettings.Load(ctx); err != nil {
		log.Printf("Falling back to the system theme: %v", err)
	}

	reconciler := usecase.NewChatListReconciler(chatRepo, ledger, wsManager)
	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	userUseCase := usecase.NewUserUseCase(userRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, objectStorage, ledger, wsManager)
	contactUseCase := usecase.NewContactUseCase(userRepo)

	core := usecase.NewClientCore(session, reconciler, ledger, wsManager)
	core.Start(ctx)
	defer core.Stop()

	handler.Setup(authUseCase, userUseCase, themeSettings, chatUseCase, reconciler, contactUseCase, ledger, session)
	handler.SetupHealthHandler(authUseCase)

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.IsDevelopment()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	sessionMiddleware := apimiddleware.NewSessionMiddleware(session)
	wsHandler := handler.NewWebSocketHandler(ctx, wsManager, session, chatUseCase, reconciler, ledger)

	router.Setup(e, sessionMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: otelhttp.NewHandler(e, cfg.OtelServiceName),
	}

	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

func newObjectStorage(ctx context.Context, cfg *config.Config, opt option.ClientOption) (service.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		client, err := storage.NewMinioStorageClient(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.StorageBucket,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.Printf("Storing images in MinIO bucket %s at %s", cfg.StorageBucket, cfg.MinioEndpoint)
		return client, nil
	default:
		log.Printf("Storing images in Cloud Storage bucket %s", cfg.StorageBucket)
		return storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
	}
}

func newKeyValueStore(ctx context.Context, cfg *config.Config) (domainrepo.KeyValueStore, error) {
	switch cfg.KVBackend {
	case "redis":
		log.Printf("Using Redis at %s for local state", cfg.RedisAddr)
		return kvstore.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
	default:
		log.Printf("Using SQLite at %s for local state", cfg.KVSQLitePath)
		return kvstore.NewSQLiteStore(cfg.KVSQLitePath)
	}
}

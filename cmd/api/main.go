package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	_ "github.com/jhoicas/punchlist-api/docs"
	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/auth"
	"github.com/jhoicas/punchlist-api/internal/application/building"
	"github.com/jhoicas/punchlist-api/internal/application/identity"
	"github.com/jhoicas/punchlist-api/internal/application/inventory"
	"github.com/jhoicas/punchlist-api/internal/application/sector"
	"github.com/jhoicas/punchlist-api/internal/application/task"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/punchlist-api/internal/infrastructure/pdf"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/postgres"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/punchlist-api/internal/interfaces/http"
	"github.com/jhoicas/punchlist-api/pkg/config"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// @title        Punch List API
// @version      1.0
// @description  Tareas de mantenimiento, inventario por sector y traslados con firma.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	appsPool, err := postgres.NewPool(ctx, cfg.AppsDB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL (apps)")
	}
	defer appsPool.Close()

	// Base core opcional: sin ella la identidad degrada al espejo y los defaults de rol.
	corePool, err := postgres.NewOptionalPool(ctx, cfg.CoreDB)
	if err != nil {
		log.Warn().Err(err).Msg("base core no disponible; se continúa en modo degradado")
		corePool = nil
	}
	var (
		coreUsers    repository.UserRepository
		overrideRepo repository.PermissionOverrideRepository
		sectorRepo   repository.SectorRepository
		activityRepo repository.ActivityRepository
		sectorNames  transfer.SectorDirectory
	)
	if corePool != nil {
		defer corePool.Close()
		pgSectors := postgres.NewSectorRepository(corePool)
		coreUsers = postgres.NewUserRepository(corePool)
		sectorRepo, sectorNames = pgSectors, pgSectors
		overrideRepo = postgres.NewPermissionOverrideRepository(corePool)
		activityRepo = postgres.NewActivityRepository(corePool)
	}

	mirrorRepo := postgres.NewUserMirrorRepository(appsPool)
	itemRepo := postgres.NewInventoryItemRepository(appsPool)
	movementRepo := postgres.NewInventoryMovementRepository(appsPool)
	attachmentRepo := postgres.NewMovementAttachmentRepository(appsPool)
	taskRepo := postgres.NewTaskRepository(appsPool)
	buildingRepo := postgres.NewBuildingRepository(appsPool)
	txRunner := postgres.NewTxRunner(appsPool)

	// Caché compartida (redis) o por proceso.
	var store interface {
		identity.Cache
		task.Cache
	}
	if cfg.Redis.URL != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.Redis.URL, strings.ToLower(cfg.App.Name)+":")
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible; se usa caché en memoria")
			store = cache.NewMemoryStore()
		} else {
			defer rs.Close()
			store = rs
		}
	} else {
		store = cache.NewMemoryStore()
	}

	// Storage de PDFs y adjuntos.
	var blobs transfer.BlobStore
	var filesDir, filesPrefix string
	switch cfg.Storage.Driver {
	case "local":
		ls, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.LocalURLBase)
		if err != nil {
			log.Fatal().Err(err).Msg("storage local")
		}
		blobs, filesDir, filesPrefix = ls, ls.Dir(), localFilesPrefix(cfg.Storage.LocalURLBase)
	default:
		s3, err := storage.NewS3Store(ctx, storage.S3OptionsFromConfig(cfg.Storage))
		if err != nil {
			log.Fatal().Err(err).Msg("storage s3")
		}
		blobs = s3
	}

	recorder := activity.NewRecorder(activityRepo, log)
	catalog := identity.LoadCatalog(ctx, overrideRepo, log)
	resolver := identity.NewPermissionResolver(
		coreUsers, mirrorRepo, overrideRepo, store,
		time.Duration(cfg.Cache.PermissionTTLSeconds)*time.Second, catalog, log,
	)
	userUC := identity.NewUserUseCase(coreUsers, mirrorRepo, sectorRepo, resolver, recorder, log)

	labels := transfer.NewLabeler(sectorNames, mirrorRepo, log)
	documents := transfer.NewDocumentService(movementRepo, infrapdf.NewTransferFormRenderer(), blobs, labels, log)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, itemRepo, movementRepo, attachmentRepo, documents, labels, recorder, log)
	transferUC := transfer.NewUseCase(movementRepo, txRunner, blobs, documents, recorder, log, cfg.Upload.MaxBytes)
	sectorUC := sector.NewUseCase(sectorRepo, coreUsers, itemRepo, recorder, log)
	taskUC := task.NewUseCase(taskRepo, buildingRepo, store,
		time.Duration(cfg.Cache.TaskSummaryTTLSeconds)*time.Second, recorder, log)
	authUC := auth.NewAuthUseCase(mirrorRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	// Espejo de usuarios: al arrancar y luego según MIRROR_RECONCILE_SCHEDULE.
	scheduler := cron.New()
	if coreUsers != nil {
		reconcile := func() {
			rctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, err := userUC.ReconcileMirror(rctx)
			if err != nil {
				log.Warn().Err(err).Msg("reconciliación del espejo de usuarios")
				return
			}
			log.Info().Int("users", n).Msg("espejo de usuarios reconciliado")
		}
		reconcile()
		if _, err := scheduler.AddFunc(cfg.Reconcile.Schedule, reconcile); err != nil {
			log.Warn().Err(err).Str("schedule", cfg.Reconcile.Schedule).Msg("cron de reconciliación inválido")
		}
		scheduler.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		// Multipart de adjuntos: límite de archivo más margen para los campos del formulario.
		BodyLimit: int(cfg.Upload.MaxBytes) + 1<<20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Punch List API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		Resolver:    resolver,
		UserUC:      userUC,
		SectorUC:    sectorUC,
		LedgerUC:    ledgerUC,
		TransferUC:  transferUC,
		TaskUC:      taskUC,
		BuildingUC:  building.NewUseCase(buildingRepo, recorder, log),
		JWTSecret:   cfg.JWT.Secret,
		AppName:     cfg.App.Name,
		Logger:      log,
		FilesDir:    filesDir,
		FilesPrefix: filesPrefix,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// localFilesPrefix ruta bajo la que se sirven los archivos locales ("/files" por defecto).
func localFilesPrefix(urlBase string) string {
	u, err := url.Parse(urlBase)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/files"
	}
	return strings.TrimSuffix(u.Path, "/")
}

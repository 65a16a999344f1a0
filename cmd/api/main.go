package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couponhub/couponhub-backend/internal/config"
	"github.com/couponhub/couponhub-backend/internal/logging"
	"github.com/couponhub/couponhub-backend/internal/metadata"
	miniorepo "github.com/couponhub/couponhub-backend/internal/repository/minio"
	"github.com/couponhub/couponhub-backend/internal/repository/ports"
	"github.com/couponhub/couponhub-backend/internal/repository/postgres"
	"github.com/couponhub/couponhub-backend/internal/service"
	transport "github.com/couponhub/couponhub-backend/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logCloser, err := logging.Setup(cfg.LogstashTCPAddr)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := postgres.Migrate(db.DB); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	var storage ports.ObjectStorage
	if cfg.MinIOEnabled() {
		client, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("minio: %v", err)
		}
		objects := miniorepo.NewStorage(client)
		if err := objects.EnsureBucket(ctx, cfg.MinIOBucketImports); err != nil {
			log.Fatalf("minio bucket %s: %v", cfg.MinIOBucketImports, err)
		}
		storage = objects
	} else {
		log.Println("minio not configured, import files will not be archived")
	}

	var extractor service.MetadataExtractor
	if cfg.MetadataAPIURL != "" {
		extractor = metadata.NewClient(cfg.MetadataAPIURL, cfg.MetadataTimeout)
	} else {
		extractor = metadata.NewScraper(cfg.MetadataTimeout)
	}

	storeRepo := postgres.NewStoreRepo(db)
	couponRepo := postgres.NewCouponRepo(db)
	jobRepo := postgres.NewImportJobRepo(db)

	logos := service.NewLogoResolver(extractor, service.LogoResolverConfig{
		FaviconServiceURL: cfg.FaviconServiceURL,
		DefaultLogoURL:    cfg.DefaultLogoURL,
	})
	importService := service.NewImportService(jobRepo, storeRepo, couponRepo, logos, storage, service.ImportServiceConfig{
		Bucket:         cfg.MinIOBucketImports,
		MaxRows:        cfg.ImportMaxRows,
		MaxFileBytes:   cfg.ImportMaxFileBytes,
		ErrorPreview:   cfg.ImportErrorPreview,
		SuccessPreview: cfg.ImportSuccessPreview,
	})
	catalogService := service.NewCatalogService(storeRepo, couponRepo)

	e := transport.NewRouter(cfg.AllowOrigins, db.PingContext)
	transport.RegisterCatalog(e, catalogService)
	transport.RegisterMetadata(e, extractor)
	transport.RegisterImports(transport.AdminGroup(e, cfg.AdminAPIKey), importService, cfg.ImportMaxFileBytes)
	transport.RegisterSwagger(e, "docs/swagger.yaml")

	if cfg.AdminAPIKey == "" {
		log.Println("ADMIN_API_KEY not set, admin routes are unauthenticated")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("api listening on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcctx "github.com/dtroode/themekeeper/internal/api/grpc/context"
	"github.com/dtroode/themekeeper/internal/api/grpc/router"
	grpcServer "github.com/dtroode/themekeeper/internal/api/grpc/server"
	"github.com/dtroode/themekeeper/internal/backend"
	"github.com/dtroode/themekeeper/internal/config"
	"github.com/dtroode/themekeeper/internal/identity"
	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/repository/postgres"
	"github.com/dtroode/themekeeper/internal/repository/sqlite"
	"github.com/dtroode/themekeeper/internal/server"
	"github.com/dtroode/themekeeper/internal/service"
	storage "github.com/dtroode/themekeeper/internal/storage/minio"
	"github.com/dtroode/themekeeper/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	roles, err := config.LoadRoles(cfg.Users.RolesFile)
	if err != nil {
		logger.Fatal("failed to load roles", "error", err)
	}
	policy, err := service.ParseCreatePolicy(cfg.Users.CreatePolicy)
	if err != nil {
		logger.Fatal("invalid user create policy", "error", err)
	}

	passwords := identity.NewPasswords(cfg.Identity.BcryptCost)
	documents, identities, closer, err := openBackend(ctx, cfg, passwords)
	if err != nil {
		logger.Fatal("failed to initialize backend", "error", err, "driver", cfg.Backend.Driver)
	}
	defer closer.Close()

	var blobs model.Storage
	if cfg.Storage.Enabled {
		blobClient, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
		blobs = blobClient
	}
	store := backend.New(documents, blobs, model.CollectionTests)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	authService := service.NewAuth(store, identities, tokenManager, logger)
	themeList := service.NewThemeList(store, logger)
	userList := service.NewUserList(store, identities, roles, policy, logger)
	ctxMgr := grpcctx.NewManager()

	if cfg.Admin.Email != "" {
		uid, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			logger.Fatal("failed to bootstrap administrator", "error", err)
		}
		logger.Info("administrator ready", "uid", uid)
	}

	if err := themeList.Start(ctx); err != nil {
		logger.Error("theme subscription failed, serving an empty list", "error", err)
	}
	defer themeList.Close()

	grpcServer := registerGRPCServer(logger, authService, themeList, userList, ctxMgr, fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(grpcServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Closing the list ends every open watch stream.
	themeList.Close()
	if err := grpcServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", grpcServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func openBackend(ctx context.Context, cfg *config.Config, passwords identity.Passwords) (model.DocumentStore, model.IdentityProvider, io.Closer, error) {
	switch cfg.Backend.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewDocumentRepository(db), sqlite.NewIdentityRepository(db, passwords), db, nil
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewDocumentRepository(db), postgres.NewIdentityRepository(db, passwords), db, nil
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerGRPCServer(
	logger *logger.Logger,
	authService *service.Auth,
	themeList *service.ThemeList,
	userList *service.UserList,
	ctxMgr model.ContextManager,
	addr string,
) *grpcServer.GRPCServer {
	r := router.New(authService, themeList, userList, ctxMgr, logger)
	s := r.Register()

	return grpcServer.NewGRPCServer(s, addr)
}

package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/api/grpc/handler"
	"github.com/dtroode/themekeeper/internal/api/grpc/middleware"
	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

// Router registers the admin services and their middleware.
type Router struct {
	authService    *service.Auth
	themeService   handler.ThemeService
	userService    handler.UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	authService *service.Auth,
	themeService handler.ThemeService,
	userService handler.UserService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		themeService:   themeService,
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// authSkip matches every method that requires a bearer token.
func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), "/"+adminapi.AuthServiceName+"/")
}

// Register builds the gRPC server with recovery, request logging and
// authentication interceptors and registers all admin services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.logger)
	recoverer := middleware.NewRecovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoverer.Option()),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoverer.Option()),
			logging.HandleGRPCStream,
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
	)
	r.registerAuthRoutes(s)
	r.registerThemeRoutes(s)
	r.registerUserRoutes(s)

	return s
}

func (r *Router) registerAuthRoutes(server *grpc.Server) {
	authHandler := handler.NewAuth(r.authService, r.logger)
	adminapi.RegisterAuthServer(server, authHandler)
}

func (r *Router) registerThemeRoutes(server *grpc.Server) {
	themesHandler := handler.NewThemes(r.themeService, r.logger)
	adminapi.RegisterThemesServer(server, themesHandler)
}

func (r *Router) registerUserRoutes(server *grpc.Server) {
	usersHandler := handler.NewUsers(r.userService, r.contextManager, r.logger)
	adminapi.RegisterUsersServer(server, usersHandler)
}

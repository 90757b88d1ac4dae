// Package server wires the policy services, the dispatcher and the HTTP
// routes into one gin engine shared by the local binary and the Lambda
// entrypoint.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/cyphera/cyphera-wallet-policy/docs"
	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/auth"
	awsclient "github.com/cyphera/cyphera-wallet-policy/internal/client/aws"
	"github.com/cyphera/cyphera-wallet-policy/internal/client/bundler"
	httpclient "github.com/cyphera/cyphera-wallet-policy/internal/client/http"
	"github.com/cyphera/cyphera-wallet-policy/internal/clock"
	"github.com/cyphera/cyphera-wallet-policy/internal/config"
	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/db"
	"github.com/cyphera/cyphera-wallet-policy/internal/dispatch"
	"github.com/cyphera/cyphera-wallet-policy/internal/handlers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/middleware"
	"github.com/cyphera/cyphera-wallet-policy/internal/notify"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/multisig"
	"github.com/cyphera/cyphera-wallet-policy/internal/policy/session"
	"github.com/cyphera/cyphera-wallet-policy/internal/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Server owns the router and every long-lived resource behind it.
type Server struct {
	Router *gin.Engine

	cfg           *config.Config
	pool          *pgxpool.Pool
	dispatcher    *dispatch.Dispatcher
	authenticator *auth.Authenticator
	cancel        context.CancelFunc
	logger        *zap.Logger
}

// Options overrides dependencies that are otherwise built from Config.
type Options struct {
	AWS   *aws.Config
	Clock clock.Clock
	// HTTPClientOptions are appended to the wallet SDK client options.
	HTTPClientOptions []httpclient.ClientOption
	Dispatch          *dispatch.Config
}

// LoadConfig reads .env, resolves secrets through Secrets Manager and
// returns the validated configuration with the AWS config it used.
func LoadConfig(ctx context.Context) (*config.Config, aws.Config, error) {
	config.LoadDotEnv()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, aws.Config{}, fmt.Errorf("unable to load AWS config: %w", err)
	}

	cfg, err := config.Load(ctx, os.Getenv, awsclient.NewSecretsManagerClient(awsCfg))
	if err != nil {
		return nil, aws.Config{}, err
	}
	return cfg, awsCfg, nil
}

// New builds the Server. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Server, error) {
	log := logger.ForComponent(logger.ComponentServer)
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	s := &Server{cfg: cfg, logger: log}
	ctx, s.cancel = context.WithCancel(ctx)

	sink := audit.Multi{audit.NewLogSink(logger.ForComponent(logger.ComponentAudit))}
	if cfg.AuditQueueURL != "" {
		if opts.AWS == nil {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("unable to load AWS config: %w", err)
			}
			opts.AWS = &awsCfg
		}
		sink = append(sink, audit.NewSQSSink(sqs.NewFromConfig(*opts.AWS), cfg.AuditQueueURL))
		log.Info("Audit events forwarded to SQS", zap.String("queue_url", cfg.AuditQueueURL))
	}

	var (
		grantRepo    session.GrantRepository
		policyRepo   session.GasPolicyRepository
		activityRepo session.ActivityRepository
		multisigRepo multisig.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := newPool(ctx, cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.pool = pool

		queries := db.New(pool)
		sessions := repository.NewSessionStore(queries)
		grantRepo, policyRepo, activityRepo = sessions, sessions, sessions

		multisigRepo = repository.NewMultisigStore(queries, db.NewTxRunner(pool, cfg.DBTxRetries))
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores", zap.String("stage", cfg.Stage))
		grantRepo = session.NewMemoryGrantRepository()
		policyRepo = session.NewMemoryGasPolicyRepository()
		activityRepo = session.NewMemoryActivityRepository()
		multisigRepo = multisig.NewMemoryRepository()
	}

	var notifier multisig.Notifier
	if cfg.ResendAPIKey != "" {
		notifier = notify.NewEmailNotifier(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.AppURL)
	}

	grants := session.NewGrantStore(grantRepo, policyRepo, sink)
	activity := session.NewActivityLog(activityRepo)
	ledger := multisig.NewLedger(multisigRepo, multisig.ECDSAVerifier{}, sink, notifier)

	httpOpts := append([]httpclient.ClientOption{httpclient.WithBaseURL(cfg.BundlerURL)}, opts.HTTPClientOptions...)
	wallet := bundler.NewClient(httpclient.NewHTTPClient(httpOpts...), cfg.BundlerPath, bundler.DefaultPollConfig(), clk)

	dispatchCfg := dispatch.DefaultConfig()
	if opts.Dispatch != nil {
		dispatchCfg = *opts.Dispatch
	}
	if cfg.DispatchWorkers > 0 {
		dispatchCfg.Workers = cfg.DispatchWorkers
	}
	s.dispatcher = dispatch.NewDispatcher(wallet, activity, ledger, clk, dispatchCfg)
	s.dispatcher.Start()

	services := handlers.NewCommonServices(handlers.CommonServicesConfig{
		Grants:     grants,
		Authorizer: session.NewAuthorizer(grants, sink),
		Policies:   session.NewGasPolicyRegistry(policyRepo),
		Activity:   activity,
		Ledger:     ledger,
		Queue:      s.dispatcher,
		Clock:      clk,
		ChainID:    cfg.ChainID,
	})

	var requireAccount gin.HandlerFunc
	if cfg.AuthDisabled {
		log.Warn("Token authentication disabled, acting account comes from the wallet SDK")
		requireAccount = auth.WalletAccount(wallet)
	} else {
		authenticator, err := auth.NewAuthenticator(auth.Config{
			JWKSURL:    cfg.JWKSURL,
			Issuer:     cfg.JWTIssuer,
			Audience:   cfg.JWTAudience,
			HMACSecret: cfg.JWTSecret,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("unable to create authenticator: %w", err)
		}
		s.authenticator = authenticator
		requireAccount = authenticator.RequireAccount()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(configureCORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware())
	router.Use(middleware.NewRateLimiter(ctx, cfg.RateLimitPerSecond, cfg.RateLimitBurst).Middleware())

	var pinger handlers.Pinger
	if s.pool != nil {
		pinger = s.pool
	}
	router.GET("/health", handlers.NewHealthHandler(pinger, s.dispatcher).Health)
	if !cfg.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	RegisterRoutes(router.Group("/api/v1", requireAccount), services)

	s.Router = router
	log.Info("Server initialized",
		zap.String("stage", cfg.Stage),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Bool("database", s.pool != nil),
		zap.Int("dispatch_workers", dispatchCfg.Workers))
	return s, nil
}

// RegisterRoutes mounts the v1 API on group. Authentication is applied by
// the caller.
func RegisterRoutes(v1 *gin.RouterGroup, services *handlers.CommonServices) {
	sessionHandler := handlers.NewSessionKeyHandler(services)
	gasPolicyHandler := handlers.NewGasPolicyHandler(services)
	multisigHandler := handlers.NewMultisigHandler(services)

	// Session keys
	sessionKeys := v1.Group("/session-keys")
	{
		sessionKeys.POST("", sessionHandler.IssueSessionKey)
		sessionKeys.GET("", sessionHandler.ListSessionKeys)
		sessionKeys.GET("/:grant_id", sessionHandler.GetSessionKey)
		sessionKeys.DELETE("/:grant_id", sessionHandler.RevokeSessionKey)
		sessionKeys.POST("/:grant_id/authorize", sessionHandler.AuthorizeOperation)
		sessionKeys.GET("/:grant_id/activity", sessionHandler.ListSessionActivity)
	}

	// Gas policies
	gasPolicies := v1.Group("/gas-policies")
	{
		gasPolicies.POST("", gasPolicyHandler.CreateGasPolicy)
		gasPolicies.GET("", gasPolicyHandler.ListGasPolicies)
		gasPolicies.GET("/:policy_id", gasPolicyHandler.GetGasPolicy)
		gasPolicies.PATCH("/:policy_id", gasPolicyHandler.UpdateGasPolicy)
	}

	// Multisig
	ms := v1.Group("/multisig")
	{
		ms.POST("", multisigHandler.InitMultisig)
		ms.GET("", multisigHandler.GetMultisig)
		ms.POST("/proposals", multisigHandler.CreateProposal)
		ms.GET("/proposals", multisigHandler.ListProposals)
		ms.GET("/proposals/:proposal_id", multisigHandler.GetProposal)
		ms.POST("/proposals/:proposal_id/sign", multisigHandler.SignProposal)
		ms.POST("/proposals/:proposal_id/execute", multisigHandler.ExecuteProposal)
		ms.POST("/proposals/:proposal_id/cancel", multisigHandler.CancelProposal)
	}
}

// Addr is the listen address for the local binary.
func (s *Server) Addr() string {
	return ":" + s.cfg.Port
}

// Close stops the dispatcher and releases the pool and JWKS refresher.
func (s *Server) Close() {
	if s.dispatcher != nil {
		s.dispatcher.Stop()
	}
	if s.authenticator != nil {
		s.authenticator.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("Server resources released")
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = 5
	if poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = poolConfig.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return pool, nil
}

// configureCORS returns a configured CORS middleware
func configureCORS(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		constants.CorrelationIDHeader, constants.AccountAddressHeader,
	}
	corsConfig.ExposeHeaders = []string{constants.CorrelationIDHeader}
	return cors.New(corsConfig)
}

package api

import (
	"context"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/api/health"
	"github.com/LambdaTest/forkplan/pkg/api/plan"
	"github.com/LambdaTest/forkplan/pkg/api/shard"
	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/planqueue"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Router represents the routes for the http server.
type Router struct {
	cfg         *config.Config
	signalCtx   context.Context
	timingStore core.TimingStore
	publisher   *planqueue.Publisher
	logger      lumber.Logger
}

// New returns a New Router. publisher may be nil when no kafka brokers are configured.
func New(
	signalCtx context.Context,
	cfg *config.Config,
	timingStore core.TimingStore,
	publisher *planqueue.Publisher,
	logger lumber.Logger) Router {
	return Router{
		cfg:         cfg,
		signalCtx:   signalCtx,
		timingStore: timingStore,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handler function will perform all route operations
func (r *Router) Handler() *gin.Engine {
	r.logger.Infof("Setting up routes")
	router := gin.New()
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := configureValidator(v); err != nil {
			r.logger.Fatalf("failed to configure validator %v", err)
		}
	}
	// skip /health API from logs as will be required in probes
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/health"))
	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = constants.CorsAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("authorization", "cache-control", "pragma")
	router.Use(cors.New(corsConfig))
	if r.cfg.Env != constants.Prod {
		pprof.Register(router)
	}

	router.GET("/health", health.Handler(r.signalCtx))
	router.POST("/plan", plan.HandleCreate(r.cfg, r.timingStore, r.publisher, r.logger))
	router.POST("/shard", shard.HandleCreate(r.logger))

	return router
}

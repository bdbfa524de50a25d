// Package server exposes both download pipelines over HTTP, for callers that
// prefer a long-lived service to one-shot CLI invocations.
package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/openfetch/bankdl/consts"
	"github.com/openfetch/bankdl/creds"
	"github.com/openfetch/bankdl/direct"
	"github.com/openfetch/bankdl/session"
	"github.com/patrickmn/go-cache"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const resultCacheDuration = 4 * time.Hour

// Options configure the HTTP server
type Options struct {
	Addr string
	// OutputDir is the base directory for direct connect downloads
	OutputDir string
	// DownloadsDir is the base directory for session adapter downloads
	DownloadsDir string
	Creds        creds.Source
	Logger       *zap.Logger
}

type server struct {
	opts        Options
	logger      *zap.Logger
	downloading *atomic.Bool
	lastResults *cache.Cache

	download   func(direct.Options) direct.Result
	synthesize func(session.Options) (session.Result, error)
}

// Run starts the HTTP server and blocks until it fails
func Run(opts Options) error {
	s := &server{
		opts:        opts,
		logger:      opts.Logger,
		downloading: atomic.NewBool(false),
		lastResults: cache.New(resultCacheDuration, resultCacheDuration*2),
		download:    direct.Download,
		synthesize:  session.Synthesize,
	}
	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(opts.Logger, time.RFC3339, true),
		recovery(opts.Logger, true),
	)
	s.setupAPI(engine.Group("/api/v1"))

	opts.Logger.Info("Starting server", zap.String("addr", opts.Addr))
	return engine.Run(opts.Addr)
}

func (s *server) setupAPI(router gin.IRouter) {
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{
			"version": consts.Version,
		})
	})
	router.POST("/ofx/download", s.downloadStatement)
	router.POST("/session/config", s.synthesizeConfig)
	router.GET("/downloads/:institution", s.lastDownload)
}

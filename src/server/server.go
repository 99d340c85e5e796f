package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	app "photoserv/src/app"
	cfg "photoserv/src/configuration"
	notify "photoserv/src/notify"
)

// NewRouter wires the routes onto a gin engine. Split from RunServer so
// tests can drive the router with httptest.
func NewRouter(config *cfg.Properties, handler *AppHandler) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	pprof.Register(router)
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/health", handler.GetHealth)
	router.GET("/login", handler.RequireSignIn, handler.Login)

	api := router.Group("/api")
	api.GET("/photos", handler.GetPhotoList)
	api.POST("/photos", handler.RequireAdmin, handler.PostPhoto)
	api.DELETE("/photos", handler.RequireAdmin, handler.DeletePhoto)
	api.GET("/me", handler.Me)
	api.POST("/interest", handler.PostInterest)
	api.GET("/test-email", handler.TestEmail)

	// Everything else is the static gallery page; API misses stay JSON.
	staticServer := http.FileServer(http.Dir(config.Server.StaticDir))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
			return
		}
		staticServer.ServeHTTP(c.Writer, c.Request)
	})

	return router
}

// RunServer builds the shared store and mail clients, the handler and
// the router, then listens. The store client stays nil when no
// credential is configured; list and upload then fail per-request
// instead of crashing the process.
func RunServer(config *cfg.Properties) {
	var clientS3 *app.MinioS3Client
	if config.S3.AccessKey != "" && config.S3.SecretKey != "" {
		var err error
		clientS3, err = app.NewMinioS3Client(
			config.S3.Host,
			config.S3.AccessKey,
			config.S3.SecretKey,
			config.S3.Bucket,
			config.S3.PublicURL,
			config.S3.UseSSL)
		if err != nil {
			log.Error().Err(err).Msg("could not create the s3 client")
			clientS3 = nil
		}
	} else {
		log.Warn().Msg("no s3 credential configured, catalog and uploads are disabled")
	}

	mail := notify.NewClient(config.Mail.APIKey, config.Mail.From, config.Mail.Seller)
	handler := NewHandler(config, clientS3, mail)
	router := NewRouter(config, handler)

	log.Info().Str("port", config.Server.Port).Msg("server listening")
	if err := router.Run(fmt.Sprintf(":%s", config.Server.Port)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

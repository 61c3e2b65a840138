package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/controllers"
	"github.com/CPU-commits/Intranet_BCourses/db"
	"github.com/CPU-commits/Intranet_BCourses/forms"
	"github.com/CPU-commits/Intranet_BCourses/middlewares"
	"github.com/CPU-commits/Intranet_BCourses/models"
	"github.com/CPU-commits/Intranet_BCourses/repositories"
	"github.com/CPU-commits/Intranet_BCourses/res"
	"github.com/CPU-commits/Intranet_BCourses/services"
	"github.com/CPU-commits/Intranet_BCourses/settings"
	"github.com/CPU-commits/Intranet_BCourses/stack"
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/cenkalti/backoff/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

type RouterConfig struct {
	JWTSecret string
	ClientURL string
	RateLimit uint
	Logger    *zap.Logger
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, &res.Response{
		Success: false,
		Message: "Too many requests. Try again in " + time.Until(info.ResetTime).String(),
	})
}

func AllowedOrigins(clientURL string) []string {
	return []string{
		"http://" + clientURL,
		"https://" + clientURL,
	}
}

func NewRouter(
	config RouterConfig,
	courseController *controllers.CourseController,
	messagesController *controllers.MessagesController,
) *gin.Engine {
	router := gin.New()
	// Proxies
	router.SetTrustedProxies([]string{"localhost"})
	// Zap logger
	router.Use(ginzap.GinzapWithConfig(config.Logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/api/courses/healthz"},
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		config.Logger.Error(
			"panic recovered",
			zap.Any("error", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, res.Response{
			Success: false,
			Message: services.ErrServer.Error(),
		})
	}))
	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     AllowedOrigins(config.ClientURL),
		AllowMethods:     []string{"GET", "OPTIONS", "PUT", "DELETE", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowWebSockets:  true,
		MaxAge:           12 * time.Hour,
	}))
	// Secure
	sslUrl := "ssl." + config.ClientURL
	router.Use(secure.New(secure.Config{
		SSLHost:              sslUrl,
		STSSeconds:           315360000,
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		IENoOpen:             true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
		SSLProxyHeaders: map[string]string{
			"X-Fowarded-Proto": "https",
		},
	}))
	// Rate limit
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: config.RateLimit,
	})
	router.Use(ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: ErrorHandler,
		KeyFunc:      keyFunc,
	}))
	// Validators
	forms.InitValidators()
	// Routes
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to English Center API",
		})
	})
	// Identity only, each operation applies its own guard
	authorized := middlewares.JWTMiddleware(config.JWTSecret)
	course := router.Group("/api/courses")
	{
		course.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, &res.Response{
				Success: true,
			})
		})
		course.GET("", courseController.GetCourses)
		course.GET("/", courseController.GetCourses)
		course.GET("/search", courseController.SearchCourses)
		course.GET("/:id", courseController.GetCourse)
		course.POST("", authorized, courseController.NewCourse)
		course.POST("/", authorized, courseController.NewCourse)
		course.PUT("/:id", authorized, courseController.UpdateCourse)
		course.DELETE("/:id", authorized, courseController.DeleteCourse)
		course.POST("/:id/register", authorized, courseController.RegisterCourse)
		course.GET("/:id/students/export", authorized, courseController.ExportStudents)
	}
	router.GET("/api/messages/ws", messagesController.Connect)
	// No route
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, res.Response{
			Success: false,
			Message: "Not found",
		})
	})
	return router
}

func connectNats(ctx context.Context, url string) (*stack.NatsClient, error) {
	var client *stack.NatsClient
	retryBackoff := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), db.CONNECT_RETRIES),
		ctx,
	)
	err := backoff.Retry(func() error {
		var err error
		client, err = stack.NewNats(url)
		return err
	}, retryBackoff)
	return client, err
}

func Init() {
	settingsData := settings.GetSettings()
	// Zap logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	if settingsData.NODE_ENV == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// Stores and bus
	var mongoConn *db.MongoConnection
	var bus *stack.NatsClient
	var index services.CourseIndex = repositories.NoopCourseIndex{}
	var searchIndex *repositories.CourseSearchIndex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		uri := db.MongoURI(
			settingsData.MONGO_CONNECTION,
			settingsData.MONGO_ROOT_USERNAME,
			settingsData.MONGO_ROOT_PASSWORD,
			settingsData.MONGO_HOST,
		)
		conn, err := db.NewConnection(gctx, uri, settingsData.MONGO_DB)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		mongoConn = conn
		return models.EnsureCourseCollection(gctx, conn)
	})
	g.Go(func() error {
		client, err := connectNats(gctx, fmt.Sprintf("nats://%s:4222", settingsData.NATS_HOST))
		if err != nil {
			logger.Warn("nats unavailable, events disabled", zap.Error(err))
			return nil
		}
		bus = client
		return nil
	})
	if settingsData.ELS_HOST != "" {
		g.Go(func() error {
			es, err := db.NewConnectionEs(db.EsOptions{
				Host:     settingsData.ELS_HOST,
				Port:     settingsData.ELS_PORT,
				Username: settingsData.ELS_USERNAME,
				Password: settingsData.ELS_PASSWORD,
				Secure:   settingsData.NODE_ENV == "prod",
			})
			if err != nil {
				return fmt.Errorf("elasticsearch: %w", err)
			}
			searchIndex, err = repositories.NewCourseSearchIndex(es, logger)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("init stores", zap.Error(err))
	}
	if searchIndex != nil {
		index = searchIndex
	}

	repository := repositories.NewCourseRepository(models.NewCourseModel(mongoConn.Database()))
	var publisher services.EventPublisher
	if bus != nil {
		publisher = bus
	}
	courseService := services.NewCourseService(repository, index, publisher, logger)
	hub := services.NewMessageHub(publisher, logger)
	if bus != nil {
		if _, err := bus.Subscribe(services.STUDENT_COURSES_SUBJECT, courseService.RespondStudentCourses); err != nil {
			logger.Fatal("subscribe", zap.String("subject", services.STUDENT_COURSES_SUBJECT), zap.Error(err))
		}
		if _, err := bus.Subscribe(services.MESSAGES_SUBJECT, hub.HandleMsg); err != nil {
			logger.Fatal("subscribe", zap.String("subject", services.MESSAGES_SUBJECT), zap.Error(err))
		}
	}

	router := NewRouter(
		RouterConfig{
			JWTSecret: settingsData.JWT_SECRET_KEY,
			ClientURL: settingsData.CLIENT_URL,
			RateLimit: settingsData.RATE_LIMIT,
			Logger:    logger,
		},
		controllers.NewCourseController(courseService),
		controllers.NewMessagesController(hub, AllowedOrigins(settingsData.CLIENT_URL), logger),
	)
	// Init server
	srv := &http.Server{
		Addr:    ":" + settingsData.PORT,
		Handler: router,
	}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	if searchIndex != nil {
		if err := searchIndex.Close(shutdownCtx); err != nil {
			logger.Error("close search index", zap.Error(err))
		}
	}
	if bus != nil {
		bus.Close()
	}
	if err := mongoConn.Disconnect(shutdownCtx); err != nil {
		logger.Error("disconnect mongo", zap.Error(err))
	}
}

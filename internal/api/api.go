package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"marketplace-service/internal/config"
	"marketplace-service/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Templates *service.TemplateService
	Users     *service.UserService
	Purchases *service.PurchaseService
	BankInfo  *service.BankInfoService
}

// NewServer builds the echo instance with middleware, error handling and every route.
func NewServer(cfg *config.Config, svc Services, db Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Server.IsProduction())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return true, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, IdempotentKeyHeader},
		AllowCredentials: true,
	}))
	if cfg.RateLimit.Rate > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(cfg.RateLimit)))
	}

	e.GET("/", describe(cfg.Server))
	e.GET("/health", health(cfg.Server, db))

	RegisterRoutes(e.Group("/api"), svc)
	return e
}

// RegisterRoutes mounts the resource endpoints under g.
func RegisterRoutes(g *echo.Group, svc Services) {
	templateHandler := NewTemplateHandler(svc.Templates)
	templates := g.Group("/templates")
	templates.GET("", templateHandler.ListTemplates)
	templates.GET("/:id", templateHandler.GetTemplate)
	templates.POST("", templateHandler.CreateTemplate)
	templates.PUT("/:id", templateHandler.UpdateTemplate)
	templates.DELETE("/:id", templateHandler.DeleteTemplate)

	userHandler := NewUserHandler(svc.Users)
	users := g.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.POST("", userHandler.CreateUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	purchaseHandler := NewPurchaseHandler(svc.Purchases)
	purchases := g.Group("/purchases")
	purchases.GET("", purchaseHandler.ListPurchases)
	purchases.GET("/user/:userId", purchaseHandler.ListUserPurchases)
	purchases.GET("/:id", purchaseHandler.GetPurchase)
	purchases.POST("", purchaseHandler.CreatePurchase)
	purchases.DELETE("/:id", purchaseHandler.DeletePurchase)

	bankInfoHandler := NewBankInfoHandler(svc.BankInfo)
	bankInfo := g.Group("/bank-info")
	bankInfo.GET("", bankInfoHandler.ListBankInfo)
	bankInfo.GET("/:id", bankInfoHandler.GetBankInfo)
	bankInfo.POST("", bankInfoHandler.CreateBankInfo)
	bankInfo.PUT("/:id", bankInfoHandler.UpdateBankInfo)
	bankInfo.DELETE("/:id", bankInfoHandler.DeleteBankInfo)
}

func describe(server config.ServerConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": server.Name,
			"version": server.Version,
			"endpoints": map[string]string{
				"templates": "/api/templates",
				"users":     "/api/users",
				"purchases": "/api/purchases",
				"bankInfo":  "/api/bank-info",
			},
		})
	}
}

func health(server config.ServerConfig, db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "ok", http.StatusOK
		if err := db.Ping(c.Request().Context()); err != nil {
			logger.Error().Err(err).Msg("Health check failed")
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		return c.JSON(code, map[string]interface{}{
			"status":  status,
			"service": server.Name,
			"time":    time.Now().Format(time.RFC3339),
		})
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Warn().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("remote_ip", v.RemoteIP).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func rateLimiterConfig(cfg config.RateLimitConfig) middleware.RateLimiterConfig {
	deny := func(c echo.Context, _ string, _ error) error {
		return c.JSON(http.StatusTooManyRequests, Response{
			Success: false,
			Error:   &ErrorBody{Message: "Rate limit exceeded"},
		})
	}
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.Rate),
				Burst:     cfg.Burst,
				ExpiresIn: cfg.ExpiresIn,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return deny(c, "", err)
		},
		DenyHandler: deny,
	}
}

// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/amirphl/dispupr-numbering/app/dto"
	"github.com/amirphl/dispupr-numbering/app/handlers"
	"github.com/amirphl/dispupr-numbering/app/middleware"
	"github.com/amirphl/dispupr-numbering/config"
	"github.com/amirphl/dispupr-numbering/docs"
	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app             *fiber.App
	cfg             *config.ProductionConfig
	accessLog       io.Writer
	bastHandler     handlers.BastHandlerInterface
	contractHandler handlers.ContractHandlerInterface
	counterHandler  handlers.CounterHandlerInterface
}

// NewFiberRouter creates a new Fiber router; accessLog receives one JSON line per request
func NewFiberRouter(
	cfg *config.ProductionConfig,
	accessLog io.Writer,
	bastHandler handlers.BastHandlerInterface,
	contractHandler handlers.ContractHandlerInterface,
	counterHandler handlers.CounterHandlerInterface,
) Router {
	if accessLog == nil {
		accessLog = os.Stdout
	}

	fiberCfg := fiber.Config{
		AppName:      "DISPUPR Document Numbering API",
		ServerHeader: "dispupr-numbering",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	}
	if len(cfg.Server.TrustedProxies) > 0 {
		fiberCfg.TrustProxy = true
		fiberCfg.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: cfg.Server.TrustedProxies}
		fiberCfg.ProxyHeader = cfg.Server.ProxyHeader
	}

	return &FiberRouter{
		app:             fiber.New(fiberCfg),
		cfg:             cfg,
		accessLog:       accessLog,
		bastHandler:     bastHandler,
		contractHandler: contractHandler,
		counterHandler:  counterHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation routes (development only)
	if r.cfg.Deployment.IsDevelopment() {
		api.Get("/docs", r.getAPIDocumentation)
		api.Get("/swagger.json", r.serveSwaggerJSON)
		log.Println("API documentation enabled for development")
	}

	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, "/api/v1/health"))
	api.Use(middleware.OperatorIdentity(r.cfg.Server.UserIDHeader))

	// Generation consumes sequences, so it gets a stricter limit with a separate quota per document type
	bast := api.Group("/bast")
	bast.Post("/generate", r.rateLimiter(r.cfg.Security.GenerateRateLimit), r.bastHandler.Generate)
	bast.Get("/records", r.bastHandler.List)
	bast.Get("/records/export", r.bastHandler.Export)
	bast.Put("/update", r.bastHandler.Update)
	bast.Get("/counters/:year", r.counterHandler.BastCounter)

	contract := api.Group("/contract")
	contract.Post("/generate", r.rateLimiter(r.cfg.Security.GenerateRateLimit), r.contractHandler.Generate)
	contract.Get("/records", r.contractHandler.List)
	contract.Get("/records/export", r.contractHandler.Export)
	contract.Put("/update", r.contractHandler.Update)
	contract.Get("/counters", r.counterHandler.ContractCounter)

	// 404 handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes setup completed")
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics(r.cfg.Metrics.Path))
	}

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		ContentSecurityPolicy:     r.cfg.Security.ContentSecurityPol,
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-site",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			utils.IdempotencyKeyHeader,
			r.cfg.Server.UserIDHeader,
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Spreadsheets are already zip containers
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/export")
		},
	}))

	// Only the static documentation endpoints are cacheable
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet ||
				(c.Path() != "/api/v1/docs" && c.Path() != "/api/v1/swagger.json")
		},
		Expiration:          30 * time.Minute,
		DisableCacheControl: false,
	}))

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.accessLog,
			Next: func(c fiber.Ctx) bool {
				// Probes and scrapes would drown the access log
				return c.Path() == "/api/v1/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}
}

// rateLimiter limits requests per client IP within the configured window
func (r *FiberRouter) rateLimiter(maxRequests int, skipPaths ...string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			for _, p := range skipPaths {
				if c.Path() == p {
					return true
				}
			}
			return false
		},
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the underlying Fiber app
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":      "ok",
			"timestamp":   utils.UTCNow().Unix(),
			"version":     r.cfg.Deployment.Version,
			"commit":      r.cfg.Deployment.CommitHash,
			"environment": r.cfg.Deployment.Environment,
			"service":     "dispupr-numbering",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "DISPUPR Document Numbering API Documentation",
			"version":     r.cfg.Deployment.Version,
			"description": "Sequential BAST and contract number issuance",
			"endpoints":   GetRouteDocumentation(),
		},
	})
}

// Serve Swagger JSON specification
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	listParams := map[string]any{
		"year":   "number (optional) - Year of the document date",
		"limit":  "number (optional) - Page size, default 100, capped at 500",
		"offset": "number (optional) - Rows to skip, default 0",
	}
	contractListParams := map[string]any{
		"year":             "number (optional) - Year of the contract date",
		"location_code":    "string (optional) - 621|622",
		"work_type":        "string (optional) - BM|BM-KONS",
		"procurement_type": "string (optional) - SP|SPK",
		"limit":            "number (optional) - Page size, default 100, capped at 500",
		"offset":           "number (optional) - Rows to skip, default 0",
	}

	return []map[string]any{
		{
			"method":      "POST",
			"path":        "/api/v1/bast/generate",
			"description": "Issue the next BAST number for the year of bast_date",
			"parameters": map[string]any{
				"project_name": "string (required) - Project name",
				"bast_date":    "string (required) - YYYY-MM-DD",
				"budget":       "string (optional) - Budget",
				"company_name": "string (optional) - Contractor company",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/bast/records",
			"description": "List BAST records, newest first",
			"parameters":  listParams,
		},
		{
			"method":      "PUT",
			"path":        "/api/v1/bast/update",
			"description": "Correct a BAST record; the sequence is kept",
			"parameters": map[string]any{
				"id":           "number (required) - Record ID",
				"project_name": "string (required) - Project name",
				"bast_date":    "string (required) - YYYY-MM-DD",
				"budget":       "string (optional) - Budget",
				"company_name": "string (optional) - Contractor company",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/bast/records/export",
			"description": "Download BAST records as xlsx",
			"parameters":  map[string]any{"year": listParams["year"]},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/bast/counters/:year",
			"description": "Read the BAST counter of a year",
			"parameters":  map[string]any{"year": "number (required) - Year in URL path"},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/contract/generate",
			"description": "Issue the next contract number for the category and year of contract_date",
			"parameters": map[string]any{
				"project_name":     "string (required) - Project name",
				"contract_date":    "string (required) - YYYY-MM-DD",
				"location":         "string (required) - 621|622",
				"work_type":        "string (required) - BM|BM-KONS",
				"procurement_type": "string (required) - SP|SPK",
				"budget":           "string (optional) - Budget",
				"company_name":     "string (optional) - Contractor company",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/contract/records",
			"description": "List contract records, newest first",
			"parameters":  contractListParams,
		},
		{
			"method":      "PUT",
			"path":        "/api/v1/contract/update",
			"description": "Correct a contract record; the sequence is kept",
			"parameters": map[string]any{
				"id":               "number (required) - Record ID",
				"project_name":     "string (required) - Project name",
				"contract_date":    "string (required) - YYYY-MM-DD",
				"location":         "string (required) - 621|622",
				"work_type":        "string (required) - BM|BM-KONS",
				"procurement_type": "string (required) - SP|SPK",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/contract/records/export",
			"description": "Download contract records as xlsx",
			"parameters":  contractListParams,
		},
		{
			"method":      "GET",
			"path":        "/api/v1/contract/counters",
			"description": "Read the counter of a contract category-year",
			"parameters": map[string]any{
				"location_code":    "string (required) - 621|622",
				"work_type":        "string (required) - BM|BM-KONS",
				"procurement_type": "string (required) - SP|SPK",
				"year":             "number (required) - Year",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}

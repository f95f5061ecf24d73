// Package router wires the HTTP handlers into the gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appbanking "github.com/buchmeister/backend/internal/application/banking"
	appbilling "github.com/buchmeister/backend/internal/application/billing"
	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	apppartner "github.com/buchmeister/backend/internal/application/partner"
	"github.com/buchmeister/backend/internal/infrastructure/config"
	"github.com/buchmeister/backend/internal/infrastructure/logger"
	"github.com/buchmeister/backend/internal/interfaces/http/handler"
	"github.com/buchmeister/backend/internal/interfaces/http/middleware"
)

// Services bundles the application services exposed over HTTP
type Services struct {
	Invoices     *appbilling.InvoiceService
	Quotes       *appbilling.QuoteService
	Customers    *apppartner.CustomerService
	Accounts     *appbanking.AccountService
	Transactions *appbanking.TransactionService
	Imports      *appbanking.ImportService
	Attachments  *appbanking.AttachmentService
	Numbers      *appnumbering.Service
}

// Options carries the cross-cutting dependencies of the router
type Options struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Version string
}

// New builds the gin engine with all routes and middleware wired
func New(services Services, opts Options) *gin.Engine {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(opts.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(opts.Config.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(opts.Config.App.Name, opts.Config.Telemetry.Enabled))
	engine.Use(logger.GinMiddleware(opts.Logger))
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(middleware.Secure())
	engine.Use(corsFromConfig(opts.Config))
	if opts.Config.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.Config.HTTP.MaxBodySize))
	}

	system := handler.NewSystemHandler(opts.DB, opts.Version)
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)

	invoices := handler.NewInvoiceHandler(services.Invoices)
	quotes := handler.NewQuoteHandler(services.Quotes)
	customers := handler.NewCustomerHandler(services.Customers)
	accounts := handler.NewAccountHandler(services.Accounts)
	transactions := handler.NewTransactionHandler(services.Transactions)
	imports := handler.NewImportHandler(services.Imports)
	attachments := handler.NewAttachmentHandler(services.Attachments)
	sequences := handler.NewSequenceHandler(services.Numbers)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/invoices", invoices.Create)
		v1.GET("/invoices", invoices.List)
		v1.GET("/invoices/:id", invoices.Get)
		v1.PUT("/invoices/:id", invoices.Update)
		v1.DELETE("/invoices/:id", invoices.Delete)
		v1.POST("/invoices/:id/send", invoices.Send)
		v1.POST("/invoices/:id/payment", invoices.MarkPaid)
		v1.POST("/invoices/:id/cancel", invoices.Cancel)
		v1.POST("/invoices/:id/correct", invoices.Correct)

		v1.POST("/quotes", quotes.Create)
		v1.GET("/quotes", quotes.List)
		v1.GET("/quotes/:id", quotes.Get)
		v1.PUT("/quotes/:id", quotes.Update)
		v1.DELETE("/quotes/:id", quotes.Delete)
		v1.POST("/quotes/:id/send", quotes.Send)
		v1.POST("/quotes/:id/accept", quotes.Accept)
		v1.POST("/quotes/:id/reject", quotes.Reject)
		v1.POST("/quotes/:id/convert", quotes.Convert)

		v1.POST("/customers", customers.Create)
		v1.GET("/customers", customers.List)
		v1.GET("/customers/:id", customers.Get)
		v1.PUT("/customers/:id", customers.Update)
		v1.POST("/customers/:id/archive", customers.Archive)
		v1.POST("/customers/:id/activate", customers.Activate)

		v1.POST("/accounts", accounts.Create)
		v1.GET("/accounts", accounts.List)
		v1.GET("/accounts/:id", accounts.Get)
		v1.PUT("/accounts/:id", accounts.Rename)
		v1.GET("/accounts/:id/transactions", transactions.List)
		v1.POST("/accounts/:id/import", imports.Upload)

		v1.POST("/transactions", transactions.Record)
		v1.GET("/transactions/:id", transactions.Get)
		v1.POST("/transactions/check-duplicate", transactions.CheckDuplicate)
		v1.POST("/transactions/sweep", transactions.Sweep)
		v1.POST("/transactions/:id/attachments", attachments.Upload)
		v1.GET("/transactions/:id/attachments", attachments.List)

		v1.GET("/attachments/:id/download", attachments.Download)
		v1.DELETE("/attachments/:id", attachments.Delete)

		v1.GET("/sequences/:documentType", sequences.Current)
		v1.DELETE("/sequences/:documentType", sequences.Reset)
	}

	return engine
}

func corsFromConfig(cfg *config.Config) gin.HandlerFunc {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return middleware.CORSWithConfig(corsCfg)
}

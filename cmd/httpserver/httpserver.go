// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/core-bank/internal/accountdelivery"
	"github.com/go-petr/core-bank/internal/accountrepo"
	"github.com/go-petr/core-bank/internal/accountservice"
	"github.com/go-petr/core-bank/internal/customerdelivery"
	"github.com/go-petr/core-bank/internal/customerrepo"
	"github.com/go-petr/core-bank/internal/customerservice"
	"github.com/go-petr/core-bank/internal/ledgerguard"
	"github.com/go-petr/core-bank/internal/ledgerrepo"
	"github.com/go-petr/core-bank/internal/middleware"
	"github.com/go-petr/core-bank/internal/operationdelivery"
	"github.com/go-petr/core-bank/internal/operationservice"
	"github.com/go-petr/core-bank/internal/txrecorder"
	"github.com/go-petr/core-bank/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	customerRepo := customerrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	ledger := ledgerguard.New(ledgerrepo.NewRepoPGS(conn), ledgerguard.Settings{
		MaxFailures: config.BreakerMaxFailures,
		OpenTimeout: config.BreakerOpenTimeout,
	}, logger)

	customerService := customerservice.New(customerRepo)
	accountService := accountservice.New(accountRepo)
	operationService := operationservice.New(ledger, txrecorder.New(), operationservice.RetryPolicy{
		MaxRetries: config.LedgerMaxRetries,
		Interval:   config.LedgerRetryInterval,
	})

	customerHandler := customerdelivery.NewHandler(customerService)
	accountHandler := accountdelivery.NewHandler(accountService)
	operationHandler := operationdelivery.NewHandler(operationService)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("decimal", operationdelivery.ValidDecimal)
		if err != nil {
			return nil, errors.New("cannot register decimal validator")
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	v1 := engine.Group("/api/v1")

	v1.POST("/customers", customerHandler.Create)
	v1.GET("/customers", customerHandler.List)
	v1.GET("/customers/:id", customerHandler.Get)

	v1.POST("/accounts", accountHandler.Create)
	v1.GET("/accounts", accountHandler.List)
	v1.GET("/accounts/:id", accountHandler.Get)

	v1.PUT("/accounts/:id/deposit", operationHandler.Deposit)
	v1.PUT("/accounts/:id/withdraw", operationHandler.Withdraw)
	v1.PUT("/accounts/:id/transfer", operationHandler.Transfer)
	v1.GET("/accounts/:id/transactions", operationHandler.History)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}

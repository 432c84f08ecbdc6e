// Package operationdelivery manages delivery layer of balance operations.
package operationdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/go-petr/core-bank/pkg/web"
)

// Service provides service layer interface needed by operation delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package operationdelivery
type Service interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, sourceID uuid.UUID, destinationNumber string, amount decimal.Decimal) error
	History(ctx context.Context, accountID uuid.UUID, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates operation delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns operation handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type accountURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
}

type transferRequest struct {
	DestinationAccountNumber string `json:"destination_account_number" binding:"required"`
	Amount                   string `json:"amount" binding:"required,decimal"`
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseTransactions struct {
	Data dataTransactions `json:"data"`
}

// Deposit handles http request to credit the account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Deposit)
}

// Withdraw handles http request to debit the account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.changeBalance(gctx, h.service.Withdraw)
}

type balanceChange func(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (domain.Account, error)

func (h *Handler) changeBalance(gctx *gin.Context, change balanceChange) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	account, err := change(ctx, uuid.MustParse(uri.ID), decimal.RequireFromString(req.Amount))
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Transfer handles http request to move funds to another account.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	err := h.service.Transfer(ctx, uuid.MustParse(uri.ID), req.DestinationAccountNumber, decimal.RequireFromString(req.Amount))
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

type historyRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

// History handles http request to list the account transactions.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var req historyRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	transactions, err := h.service.History(ctx, uuid.MustParse(uri.ID), req.PageSize, req.PageID)
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

// errorResponse maps operation errors to http status and stable code.
func errorResponse(err error) (int, web.Response) {
	switch {
	case errors.Is(err, domain.ErrAmountNotPositive):
		return http.StatusBadRequest, web.Error(err, web.CodeAmountNotPositive)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, web.Error(err, web.CodeInvalidInput)
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, web.Error(err, web.CodeAccountNotFound)
	case errors.Is(err, domain.ErrDestinationNotFound):
		return http.StatusNotFound, web.Error(err, web.CodeDestinationNotFound)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, web.Error(err, web.CodeInsufficientFunds)
	case errors.Is(err, domain.ErrBalanceLimitExceeded):
		return http.StatusUnprocessableEntity, web.Error(err, web.CodeBalanceLimitExceeded)
	case errors.Is(err, domain.ErrContention):
		return http.StatusConflict, web.Error(err, web.CodeContention)
	case errors.Is(err, errorspkg.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, web.Error(err, web.CodeStoreUnavailable)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrInternal, web.CodeInternal)
}

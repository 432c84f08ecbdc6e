// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/go-petr/core-bank/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	List(ctx context.Context, customerID uuid.UUID, pageSize, pageID int32) ([]domain.Account, int64, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data"`
}

type createRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	createdAccount, err := h.service.Create(ctx, uuid.MustParse(req.CustomerID))
	if err != nil {
		// The customer is part of the request body here, not the resource path.
		if errors.Is(err, domain.ErrCustomerNotFound) {
			gctx.JSON(http.StatusBadRequest, web.Error(err, web.CodeCustomerNotFound))
			return
		}

		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{createdAccount}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	acc, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type listRequest struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	PageID     int32  `form:"page_id" binding:"required,min=1"`
	PageSize   int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
	Total    int64            `json:"total"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	var customerID uuid.UUID
	if req.CustomerID != "" {
		customerID = uuid.MustParse(req.CustomerID)
	}

	accounts, total, err := h.service.List(ctx, customerID, req.PageSize, req.PageID)
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts, total}})
}

func errorResponse(err error) (int, web.Response) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, web.Error(err, web.CodeInvalidInput)
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, web.Error(err, web.CodeAccountNotFound)
	case errors.Is(err, errorspkg.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, web.Error(err, web.CodeStoreUnavailable)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrInternal, web.CodeInternal)
}

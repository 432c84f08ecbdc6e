// Package customerdelivery manages delivery layer of customers.
package customerdelivery

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

// Service provides service layer interface needed by customer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package customerdelivery
type Service interface {
	Create(ctx context.Context, name, address string) (domain.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	List(ctx context.Context, pageSize, pageID int32) ([]domain.Customer, int64, error)
}

// Handler facilitates customer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns customer handler.
func NewHandler(cs Service) Handler {
	return Handler{service: cs}
}

type data struct {
	Customer domain.Customer `json:"customer"`
}

type response struct {
	Data data `json:"data"`
}

type createRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// Create handles http request to create customer.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	customer, err := h.service.Create(ctx, req.Name, req.Address)
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{customer}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get customer.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	customer, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{customer}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataCustomers struct {
	Customers []domain.Customer `json:"customers"`
	Total     int64             `json:"total"`
}

type responseCustomers struct {
	Data dataCustomers `json:"data"`
}

// List handles http request to list customers.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	customers, total, err := h.service.List(ctx, req.PageSize, req.PageID)
	if err != nil {
		status, res := errorResponse(err)
		gctx.JSON(status, res)

		return
	}

	gctx.JSON(http.StatusOK, responseCustomers{Data: dataCustomers{customers, total}})
}

func errorResponse(err error) (int, web.Response) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, web.Error(err, web.CodeInvalidInput)
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, web.Error(err, web.CodeCustomerNotFound)
	case errors.Is(err, errorspkg.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, web.Error(err, web.CodeStoreUnavailable)
	}

	return http.StatusInternalServerError, web.Error(errorspkg.ErrInternal, web.CodeInternal)
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/valehub/internal/domain/voucher"
	"github.com/geocoder89/valehub/internal/http/middlewares"
	"github.com/geocoder89/valehub/internal/policy"
	"github.com/geocoder89/valehub/internal/service"
	"github.com/gin-gonic/gin"
)

type VoucherService interface {
	List(ctx context.Context, actor policy.Actor, q service.ListQuery) (service.VoucherList, error)
	Summary(ctx context.Context, actor policy.Actor, q service.ListQuery) (voucher.Summary, error)
	Get(ctx context.Context, actor policy.Actor, id int64) (voucher.Voucher, error)
	Create(ctx context.Context, actor policy.Actor, in voucher.Input) (voucher.Voucher, error)
	Update(ctx context.Context, actor policy.Actor, id int64, in voucher.Input) (voucher.Voucher, error)
	ToggleStatus(ctx context.Context, actor policy.Actor, id int64) (voucher.Voucher, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	Years(ctx context.Context, actor policy.Actor) ([]string, error)
}

type VouchersHandler struct {
	vouchers VoucherService
}

func NewVouchersHandler(vouchers VoucherService) *VouchersHandler {
	return &VouchersHandler{vouchers: vouchers}
}

func voucherID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid voucher id", gin.H{"field": "id"})
		return 0, false
	}
	return id, true
}

func (h *VouchersHandler) ListVouchers(ctx *gin.Context) {
	var q service.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{"reason": err.Error()})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	list, err := h.vouchers.List(cctx, middlewares.ActorFrom(ctx), q)
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not list vouchers")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, list)
}

func (h *VouchersHandler) Summary(ctx *gin.Context) {
	var q service.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", gin.H{"reason": err.Error()})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	sum, err := h.vouchers.Summary(cctx, middlewares.ActorFrom(ctx), q)
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not summarize vouchers")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, sum)
}

func (h *VouchersHandler) GetVoucher(ctx *gin.Context) {
	id, ok := voucherID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	v, err := h.vouchers.Get(cctx, middlewares.ActorFrom(ctx), id)
	if err != nil {
		RespondDomainError(ctx, err, "Voucher not found", "Could not fetch voucher")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, v)
}

func (h *VouchersHandler) CreateVoucher(ctx *gin.Context) {
	var in voucher.Input

	if !BindJSON(ctx, &in) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	v, err := h.vouchers.Create(cctx, middlewares.ActorFrom(ctx), in)
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not create voucher")
		return
	}

	ctx.JSON(http.StatusCreated, v)
}

func (h *VouchersHandler) UpdateVoucher(ctx *gin.Context) {
	id, ok := voucherID(ctx)
	if !ok {
		return
	}

	var in voucher.Input
	if !BindJSON(ctx, &in) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	v, err := h.vouchers.Update(cctx, middlewares.ActorFrom(ctx), id, in)
	if err != nil {
		RespondDomainError(ctx, err, "Voucher not found", "Could not update voucher")
		return
	}

	ctx.JSON(http.StatusOK, v)
}

func (h *VouchersHandler) ToggleStatus(ctx *gin.Context) {
	id, ok := voucherID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	v, err := h.vouchers.ToggleStatus(cctx, middlewares.ActorFrom(ctx), id)
	if err != nil {
		RespondDomainError(ctx, err, "Voucher not found", "Could not update voucher status")
		return
	}

	ctx.JSON(http.StatusOK, v)
}

func (h *VouchersHandler) DeleteVoucher(ctx *gin.Context) {
	id, ok := voucherID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.vouchers.Delete(cctx, middlewares.ActorFrom(ctx), id); err != nil {
		RespondDomainError(ctx, err, "Voucher not found", "Could not delete voucher")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *VouchersHandler) ListYears(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	years, err := h.vouchers.Years(cctx, middlewares.ActorFrom(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not list years")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, years)
}

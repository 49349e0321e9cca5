package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/http/middlewares"
	"github.com/geocoder89/valehub/internal/policy"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	List(ctx context.Context, actor policy.Actor) ([]user.User, error)
	ListEmployees(ctx context.Context, actor policy.Actor) ([]user.Option, error)
	Create(ctx context.Context, actor policy.Actor, req user.CreateRequest) (user.User, error)
	Update(ctx context.Context, actor policy.Actor, id string, req user.UpdateRequest) (user.User, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}

type UsersHandler struct {
	users UserService
}

func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.users.List(cctx, middlewares.ActorFrom(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not list users")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

// ListEmployees feeds the owner picker of the voucher form.
func (h *UsersHandler) ListEmployees(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	options, err := h.users.ListEmployees(cctx, middlewares.ActorFrom(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not list employees")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, options)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.users.Create(cctx, middlewares.ActorFrom(ctx), req)
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	updated, err := h.users.Update(cctx, middlewares.ActorFrom(ctx), ctx.Param("id"), req)
	if err != nil {
		RespondDomainError(ctx, err, "User not found", "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, middlewares.ActorFrom(ctx), ctx.Param("id")); err != nil {
		RespondDomainError(ctx, err, "User not found", "Could not delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}

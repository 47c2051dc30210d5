package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/transport/http/dto"
	"shop_backend/internal/feature/auth/usecase"
	"shop_backend/internal/platform/validation"
)

// UserDirectory はユーザー管理APIが必要とする操作を定義します。
type UserDirectory interface {
	List(ctx context.Context) ([]entity.User, error)
	UpdateByID(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error)
	DeleteByID(ctx context.Context, id string) error
}

// UserHandler はユーザー管理のHTTPリクエストを処理します。
type UserHandler struct {
	users UserDirectory
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserDirectory) *UserHandler {
	return &UserHandler{users: users}
}

// List は全ユーザーを返します。取得失敗時は400を返却します。
func (h *UserHandler) List(c *gin.Context) {
	us, err := h.users.List(c.Request.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(us))
}

// Update はパスパラメータ:idのユーザーのプロフィールを更新します。
// - 必須フィールド不足時は400を返却
// - ユーザーが存在しない場合は404を返却
// - メールアドレスが他ユーザーに使用されている場合は409を返却
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("user update validation failed", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest, Details: validation.ToDetails(err)})
		return
	}

	u, err := h.users.UpdateByID(c.Request.Context(), id, entity.ProfileUpdate{Username: req.Username, Email: req.Email})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgUserNotFound})
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: api.MsgEmailAlreadyExists})
		case errors.Is(err, usecase.ErrValidation):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest})
		default:
			slog.Error("failed to update user", "error", err, "user_id", id)
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to update user"})
		}
		return
	}

	slog.Info("user updated", "user_id", id)
	c.JSON(http.StatusOK, dto.FromEntity(u))
}

// Delete はパスパラメータ:idのユーザーを削除します。
// 存在しない場合や削除失敗時は400を返却します。
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.users.DeleteByID(c.Request.Context(), id); err != nil {
		slog.Warn("failed to delete user", "error", err, "user_id", id)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to delete user"})
		return
	}

	slog.Info("user deleted", "user_id", id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "user deleted"})
}

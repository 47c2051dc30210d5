// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger は依存サービスの疎通確認を行います。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc は関数をPingerとして扱うためのアダプターです。
type PingFunc func(ctx context.Context) error

// Ping はPingerを実装します。
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler は /healthz（生存確認）と /readyz（依存サービスの準備確認）を処理します。
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler はHealthHandlerを生成します。checksのキーはレスポンスに表示される依存サービス名です。
func NewHealthHandler(checks map[string]Pinger, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{checks: checks, timeout: timeout}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 依存サービスには触れず、HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	if writeBodyless(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready は全ての依存サービスへのPingが成功した場合のみ200を返します。
// いずれかが失敗した場合は503と失敗したサービス名を返します。
func (h *HealthHandler) Ready(c *gin.Context) {
	if writeBodyless(c) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", "dependency", name, "error", err)
			failed[name] = "unavailable"
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeBodyless はキャッシュ防止ヘッダーを設定し、HEAD/OPTIONSの場合はボディなしで応答します。
func writeBodyless(c *gin.Context) bool {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return true
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return true
	}
	return false
}

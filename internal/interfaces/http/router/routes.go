package router

import (
	"net/http"

	"github.com/fiado/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// NewClientRoutes groups the client and per-client ledger endpoints
func NewClientRoutes(clients *handler.ClientHandler, ledger *handler.LedgerHandler) *DomainGroup {
	g := NewDomainGroup("clients", "/clients")
	g.POST("", clients.Create).
		GET("", clients.List).
		GET("/:id", clients.Get).
		PUT("/:id", clients.Update)

	g.GET("/:id/debt", ledger.GetDebt).
		POST("/:id/recalculate", ledger.Recalculate).
		GET("/:id/history", ledger.GetHistory).
		GET("/:id/consistency", ledger.CheckConsistency)

	g.POST("/:id/sales", ledger.RecordSale).
		PUT("/:id/sales/:eventId", ledger.UpdateSale).
		POST("/:id/payments", ledger.RecordPayment).
		PUT("/:id/payments/:eventId", ledger.UpdatePayment).
		DELETE("/:id/events/:eventId", ledger.DeleteEvent)
	return g
}

// NewLedgerRoutes groups the stateless calculation endpoints
func NewLedgerRoutes(ledger *handler.LedgerHandler) *DomainGroup {
	return NewDomainGroup("ledger", "/ledger").
		POST("/preview", ledger.Preview).
		POST("/split", ledger.Split)
}

// SetupSystemRoutes registers the unversioned operational endpoints.
// A nil metrics handler leaves /metrics unregistered.
func SetupSystemRoutes(engine *gin.Engine, system *handler.SystemHandler, metricsPath string, metrics http.Handler) {
	engine.GET("/health", system.Health)
	engine.GET("/system/info", system.GetSystemInfo)
	if metrics != nil {
		engine.GET(metricsPath, gin.WrapH(metrics))
	}
}

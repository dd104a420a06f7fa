package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/database"
)

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// Status reports service liveness and database reachability.
func (controller *HealthController) Status(c *gin.Context) {
	overall, dbStatus := "ok", "ok"
	status := http.StatusOK
	if err := controller.db.Ping(); err != nil {
		overall, dbStatus = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":   overall,
		"version":  controller.version,
		"database": dbStatus,
	})
}

package http

import (
	"github.com/gin-gonic/gin"
)

type MaintenanceController struct {
	runner MaintenanceRunner
}

func NewMaintenanceController(runner MaintenanceRunner) *MaintenanceController {
	return &MaintenanceController{runner: runner}
}

// RunMaintenance queues store maintenance now
// POST /api/admin/maintenance
func (mc *MaintenanceController) RunMaintenance(c *gin.Context) {
	if err := mc.runner.RunNow(c.Request.Context()); err != nil {
		respondInternalError(c, err, "run maintenance")
		return
	}
	respondAccepted(c, "maintenance queued", nil)
}

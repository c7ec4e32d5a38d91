package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/vidmerge/vidmerge-bot/merges"
)

func RegisterMergesRouter(h *merges.MergesHandler, r *gin.RouterGroup) {
	group := r.Group("/merges")

	group.GET("/:userId/session", h.GetSession)
	group.GET("/:userId/tasks", h.ListTasks)
}

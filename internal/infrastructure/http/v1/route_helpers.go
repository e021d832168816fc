package v1

import (
	"github.com/gin-gonic/gin"
)

// ListRouteHandler is implemented by handlers of filterable resources.
type ListRouteHandler interface {
	List(c *gin.Context)
	Search(c *gin.Context)
}

// RegisterListRoutes registers the textual and structured filter routes of a resource.
//
//	RegisterListRoutes(api.Group("/job-posts"), handlers.NewJobPostHandler(base, service))
func RegisterListRoutes(group *gin.RouterGroup, handler ListRouteHandler) {
	group.GET("", handler.List)
	group.POST("/search", handler.Search)
}

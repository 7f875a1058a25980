package search

import (
	"net/http"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/session"

	"github.com/gin-gonic/gin"
)

var PathSearchTasks = "/v1/search/tasks"

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSearchTasks, middleWares...)
	g.GET("", handleSearchTasks)

	authority.RegisterPolicy(http.MethodGet, PathSearchTasks,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer},
			Scope: &authority.ScopeDescriptor{Kind: authority.ScopeProject, LocatorParam: "projectId"}})
}

func handleSearchTasks(c *gin.Context) {
	query := domain.TaskQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := SearchTasksFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

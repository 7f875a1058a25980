package analytics

import (
	"net/http"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/session"

	"github.com/gin-gonic/gin"
)

var PathTaskDistribution = "/v1/charts/task-distribution"

func RegisterAnalyticsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTaskDistribution, middleWares...)
	g.GET("", handleTaskDistribution)

	authority.RegisterPolicy(http.MethodGet, PathTaskDistribution,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer},
			Scope: &authority.ScopeDescriptor{Kind: authority.ScopeProject, LocatorParam: "projectId"}})
}

func handleTaskDistribution(c *gin.Context) {
	query := TaskDistributionQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := TaskDistributionFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

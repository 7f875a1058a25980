package projects

import (
	"net/http"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/misc"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	ProjectsApiRoot = "/v1/projects"

	QueryProjectsFunc = QueryProjects
	CreateProjectFunc = CreateProject
	DetailProjectFunc = DetailProject
	UpdateProjectFunc = UpdateProject
)

func RegisterProjectsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	projects := r.Group(ProjectsApiRoot, middleWares...)
	projects.GET("", HandleQueryProjects)
	projects.POST("", HandleCreateProject)
	projects.GET(":id", HandleDetailProject)
	projects.PUT(":projectId", HandleUpdateProject)

	// listing resolves to the workspace through inference on
	// workspaceId; project detail resolves through the generic id (or
	// id+slug) convention, which keeps the public-visibility
	// short-circuit reachable for non-members
	authority.RegisterPolicy(http.MethodGet, ProjectsApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer}})
	authority.RegisterPolicy(http.MethodPost, ProjectsApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager}})
	authority.RegisterPolicy(http.MethodGet, ProjectsApiRoot+"/:id",
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer}})
	authority.RegisterPolicy(http.MethodPut, ProjectsApiRoot+"/:projectId",
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager}})
}

func HandleQueryProjects(c *gin.Context) {
	workspaceId, err := types.ParseID(c.Query("workspaceId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := QueryProjectsFunc(workspaceId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &result)
}

func HandleCreateProject(c *gin.Context) {
	payload := domain.ProjectCreating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := CreateProjectFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDetailProject(c *gin.Context) {
	slug := c.Query("slug")
	var id types.ID
	if slug == "" {
		parsed, err := misc.BindingPathID(c)
		if err != nil {
			return
		}
		id = parsed
	}

	result, err := DetailProjectFunc(id, slug, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateProject(c *gin.Context) {
	id, err := types.ParseID(c.Param("projectId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	payload := domain.ProjectUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateProjectFunc(id, &payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

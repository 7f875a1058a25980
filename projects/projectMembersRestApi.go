package projects

import (
	"net/http"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	ProjectMembersApiRoot = "/v1/project-members"

	CreateProjectMemberFunc       = CreateProjectMember
	QueryProjectMemberDetailsFunc = QueryProjectMemberDetails
	DeleteProjectMemberFunc       = DeleteProjectMember
)

func RegisterProjectMembersRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	members := r.Group(ProjectMembersApiRoot, middleWares...)
	members.GET("", HandleQueryProjectMembers)
	members.POST("", HandleCreateProjectMember)
	members.DELETE("", HandleDeleteProjectMember)

	memberScope := authority.ScopeDescriptor{Kind: authority.ScopeProject, LocatorParam: "projectId"}
	authority.RegisterPolicy(http.MethodGet, ProjectMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer}, Scope: &memberScope})
	authority.RegisterPolicy(http.MethodPost, ProjectMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager, domain.RoleOwner}, Scope: &memberScope})
	authority.RegisterPolicy(http.MethodDelete, ProjectMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager, domain.RoleOwner}, Scope: &memberScope})
}

func HandleQueryProjectMembers(c *gin.Context) {
	query := domain.ProjectMemberQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	result, err := QueryProjectMemberDetailsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateProjectMember(c *gin.Context) {
	payload := domain.ProjectMemberCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := CreateProjectMemberFunc(&payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleDeleteProjectMember(c *gin.Context) {
	deletion := domain.ProjectMemberDeletion{}
	if err := c.ShouldBindWith(&deletion, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := DeleteProjectMemberFunc(&deletion, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

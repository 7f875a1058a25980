package workspaces

import (
	"net/http"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	WorkspacesApiRoot       = "/v1/workspaces"
	WorkspaceMembersApiRoot = "/v1/workspace-members"

	QueryWorkspacesFunc       = QueryWorkspaces
	CreateWorkspaceFunc       = CreateWorkspace
	UpdateWorkspaceFunc       = UpdateWorkspace
	CreateWorkspaceMemberFunc = CreateWorkspaceMember
	DeleteWorkspaceMemberFunc = DeleteWorkspaceMember
)

func RegisterWorkspacesRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	workspaces := r.Group(WorkspacesApiRoot, middleWares...)
	workspaces.GET("", HandleQueryWorkspaces)
	workspaces.POST("", HandleCreateWorkspace)
	workspaces.PUT(":workspaceId", HandleUpdateWorkspace)

	// listing and creating resolve against the owning organization
	// through scope inference on the organizationId parameter
	authority.RegisterPolicy(http.MethodGet, WorkspacesApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer}})
	authority.RegisterPolicy(http.MethodPost, WorkspacesApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager}})
	authority.RegisterPolicy(http.MethodPut, WorkspacesApiRoot+"/:workspaceId",
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager}})

	members := r.Group(WorkspaceMembersApiRoot, middleWares...)
	members.POST("", HandleCreateWorkspaceMember)
	members.DELETE("", HandleDeleteWorkspaceMember)

	memberScope := authority.ScopeDescriptor{Kind: authority.ScopeWorkspace, LocatorParam: "workspaceId"}
	authority.RegisterPolicy(http.MethodPost, WorkspaceMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager, domain.RoleOwner}, Scope: &memberScope})
	authority.RegisterPolicy(http.MethodDelete, WorkspaceMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager, domain.RoleOwner}, Scope: &memberScope})
}

func HandleQueryWorkspaces(c *gin.Context) {
	orgId, err := types.ParseID(c.Query("organizationId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := QueryWorkspacesFunc(orgId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &result)
}

func HandleCreateWorkspace(c *gin.Context) {
	payload := domain.WorkspaceCreating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := CreateWorkspaceFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateWorkspace(c *gin.Context) {
	id, err := types.ParseID(c.Param("workspaceId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	payload := domain.WorkspaceUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateWorkspaceFunc(id, &payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleCreateWorkspaceMember(c *gin.Context) {
	payload := domain.WorkspaceMemberCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := CreateWorkspaceMemberFunc(&payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleDeleteWorkspaceMember(c *gin.Context) {
	deletion := domain.WorkspaceMemberDeletion{}
	if err := c.ShouldBindWith(&deletion, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := DeleteWorkspaceMemberFunc(&deletion, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

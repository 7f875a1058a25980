package orgs

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
	OrganizationsApiRoot       = "/v1/organizations"
	OrganizationMembersApiRoot = "/v1/organization-members"

	QueryOrganizationsFunc       = QueryOrganizations
	CreateOrganizationFunc       = CreateOrganization
	UpdateOrganizationFunc       = UpdateOrganization
	CreateOrganizationMemberFunc = CreateOrganizationMember
	QueryOrganizationMembersFunc = QueryOrganizationMembers
	DeleteOrganizationMemberFunc = DeleteOrganizationMember
)

func RegisterOrganizationsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	organizations := r.Group(OrganizationsApiRoot, middleWares...)
	organizations.GET("", HandleQueryOrganizations)
	organizations.POST("", HandleCreateOrganization)
	organizations.PUT(":organizationId", HandleUpdateOrganization)

	// creating and listing organizations needs authentication only;
	// updating needs manager rank at the organization
	authority.RegisterPolicy(http.MethodPut, OrganizationsApiRoot+"/:organizationId",
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager}})

	members := r.Group(OrganizationMembersApiRoot, middleWares...)
	members.GET("", HandleQueryOrganizationMembers)
	members.POST("", HandleCreateOrganizationMember)
	members.DELETE("", HandleDeleteOrganizationMember)

	memberScope := authority.ScopeDescriptor{Kind: authority.ScopeOrganization, LocatorParam: "organizationId"}
	authority.RegisterPolicy(http.MethodGet, OrganizationMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer}, Scope: &memberScope})
	authority.RegisterPolicy(http.MethodPost, OrganizationMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager, domain.RoleOwner}, Scope: &memberScope})
	authority.RegisterPolicy(http.MethodDelete, OrganizationMembersApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager, domain.RoleOwner}, Scope: &memberScope})
}

func HandleQueryOrganizations(c *gin.Context) {
	result, err := QueryOrganizationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &result)
}

func HandleCreateOrganization(c *gin.Context) {
	payload := domain.OrganizationCreating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := CreateOrganizationFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateOrganization(c *gin.Context) {
	id, err := types.ParseID(c.Param("organizationId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	payload := domain.OrganizationUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateOrganizationFunc(id, &payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleQueryOrganizationMembers(c *gin.Context) {
	query := domain.OrganizationMemberQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	result, err := QueryOrganizationMembersFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateOrganizationMember(c *gin.Context) {
	payload := domain.OrganizationMemberCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := CreateOrganizationMemberFunc(&payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleDeleteOrganizationMember(c *gin.Context) {
	deletion := domain.OrganizationMemberDeletion{}
	if err := c.ShouldBindWith(&deletion, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := DeleteOrganizationMemberFunc(&deletion, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

// Project visibility. Public projects are readable by any
// authenticated user without a membership row.
const (
	ProjectVisibilityPrivate  = "private"
	ProjectVisibilityInternal = "internal"
	ProjectVisibilityPublic   = "public"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	WorkspaceId types.ID `json:"workspaceId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Slug string `json:"slug" gorm:"unique_index:project_slug_idx"`
	Name string `json:"name"`

	Visibility string `json:"visibility"`

	NextTaskNum int `json:"nextTaskNum" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	Creator    types.ID  `json:"creator"`
}

type ProjectCreating struct {
	WorkspaceID types.ID `json:"workspaceId" binding:"required"`
	Name        string   `json:"name" binding:"required,lte=60" validate:"required,lte=60"`
	Slug        string   `json:"slug" binding:"required,lte=60,lowercase" validate:"required,lte=60,lowercase"`
	Visibility  string   `json:"visibility" binding:"omitempty,oneof=private internal public"`
}

type ProjectUpdating struct {
	Name       string `json:"name" binding:"required,lte=60" validate:"required,lte=60"`
	Visibility string `json:"visibility" binding:"omitempty,oneof=private internal public"`
}

type ProjectMember struct {
	ProjectId types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId  types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       string    `json:"role"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type ProjectMemberDetail struct {
	ProjectMember

	ProjectName string `json:"projectName"`
	MemberName  string `json:"memberName"`
}

type ProjectMemberCreation struct {
	ProjectID types.ID `json:"projectId" binding:"required"`
	MemberId  types.ID `json:"memberId" binding:"required"`
	Role      string   `json:"role" binding:"required,oneof=viewer member manager owner"`
}

type ProjectMemberQuery struct {
	ProjectID *types.ID `form:"projectId"`
	MemberID  *types.ID `form:"memberId"`
}

type ProjectMemberDeletion struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	MemberID  types.ID `form:"memberId" binding:"required"`
}

package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Workspace struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	OrgId types.ID `json:"organizationId" gorm:"unique_index:ws_org_name_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name  string   `json:"name" gorm:"unique_index:ws_org_name_idx"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	Creator    types.ID  `json:"creator"`
}

type WorkspaceCreating struct {
	OrgID types.ID `json:"organizationId" binding:"required"`
	Name  string   `json:"name" binding:"required,lte=60" validate:"required,lte=60"`
}

type WorkspaceUpdating struct {
	Name string `json:"name" binding:"required,lte=60" validate:"required,lte=60"`
}

type WorkspaceMember struct {
	WorkspaceId types.ID `json:"workspaceId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId    types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       string    `json:"role"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type WorkspaceMemberCreation struct {
	WorkspaceID types.ID `json:"workspaceId" binding:"required"`
	MemberId    types.ID `json:"memberId" binding:"required"`
	Role        string   `json:"role" binding:"required,oneof=viewer member manager owner"`
}

type WorkspaceMemberDeletion struct {
	WorkspaceID types.ID `form:"workspaceId" binding:"required"`
	MemberID    types.ID `form:"memberId" binding:"required"`
}

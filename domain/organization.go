package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Organization struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name string `json:"name" gorm:"unique_index:org_name_idx"`

	// Owner is the account which created the organization. It keeps
	// elevated access to the organization even without a membership row.
	Owner types.ID `json:"owner"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	Creator    types.ID  `json:"creator"`
}

type OrganizationCreating struct {
	Name string `json:"name" binding:"required,lte=60" validate:"required,lte=60"`
}

type OrganizationUpdating struct {
	Name string `json:"name" binding:"required,lte=60" validate:"required,lte=60"`
}

type OrganizationMember struct {
	OrgId    types.ID `json:"organizationId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role       string    `json:"role"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type OrganizationMemberCreation struct {
	OrgID    types.ID `json:"organizationId" binding:"required"`
	MemberId types.ID `json:"memberId" binding:"required"`
	Role     string   `json:"role" binding:"required,oneof=viewer member manager owner"`
}

type OrganizationMemberQuery struct {
	OrgID    *types.ID `form:"organizationId"`
	MemberID *types.ID `form:"memberId"`
}

type OrganizationMemberDeletion struct {
	OrgID    types.ID `form:"organizationId" binding:"required"`
	MemberID types.ID `form:"memberId" binding:"required"`
}

package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	TaskStatePending = "PENDING"
	TaskStateDoing   = "DOING"
	TaskStateDone    = "DONE"
)

type Task struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectId  types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Identifier string   `json:"identifier" gorm:"unique_index:task_identifier_idx"`

	Name  string `json:"name"`
	State string `json:"state"`

	AssigneeId types.ID `json:"assigneeId"`
	ReporterId types.ID `json:"reporterId"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type TaskCreation struct {
	ProjectID  types.ID `json:"projectId" binding:"required"`
	Name       string   `json:"name" binding:"required,lte=255" validate:"required,lte=255"`
	AssigneeID types.ID `json:"assigneeId"`
}

type TaskUpdating struct {
	Name       string   `json:"name" binding:"required,lte=255" validate:"required,lte=255"`
	State      string   `json:"state" binding:"omitempty,oneof=PENDING DOING DONE"`
	AssigneeID types.ID `json:"assigneeId"`
}

type TaskQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	Name      string   `form:"name"`
	States    []string `form:"state"`
}

package tasks

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
	TasksApiRoot = "/v1/tasks"

	QueryTasksFunc = QueryTasks
	CreateTaskFunc = CreateTask
	UpdateTaskFunc = UpdateTask
	DeleteTaskFunc = DeleteTask
)

func RegisterTasksRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	tasks := r.Group(TasksApiRoot, middleWares...)
	tasks.GET("", HandleQueryTasks)
	tasks.POST("", HandleCreateTask)
	tasks.PUT(":id", HandleUpdateTask)
	tasks.DELETE(":id", HandleDeleteTask)

	// task mutations carry the owning project in the projectId query
	// param; the :id path param is the task id, not a scope locator,
	// so these routes bind an explicit descriptor
	projectScope := authority.ScopeDescriptor{Kind: authority.ScopeProject, LocatorParam: "projectId"}
	authority.RegisterPolicy(http.MethodGet, TasksApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleViewer}, Scope: &projectScope})
	authority.RegisterPolicy(http.MethodPost, TasksApiRoot,
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleMember}, Scope: &projectScope})
	authority.RegisterPolicy(http.MethodPut, TasksApiRoot+"/:id",
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleMember}, Scope: &projectScope})
	authority.RegisterPolicy(http.MethodDelete, TasksApiRoot+"/:id",
		authority.OperationPolicy{RequiredRoles: []string{domain.RoleManager}, Scope: &projectScope})
}

func HandleQueryTasks(c *gin.Context) {
	query := domain.TaskQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := QueryTasksFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateTask(c *gin.Context) {
	payload := domain.TaskCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := CreateTaskFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleUpdateTask(c *gin.Context) {
	id, projectId, err := bindingTaskLocator(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	payload := domain.TaskUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := UpdateTaskFunc(id, projectId, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteTask(c *gin.Context) {
	id, projectId, err := bindingTaskLocator(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := DeleteTaskFunc(id, projectId, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func bindingTaskLocator(c *gin.Context) (types.ID, types.ID, error) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		return 0, 0, err
	}
	projectId, err := types.ParseID(c.Query("projectId"))
	if err != nil {
		return 0, 0, err
	}
	return id, projectId, nil
}

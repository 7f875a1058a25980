package main

import (
	"context"
	"net/http"

	"lattice/account"
	"lattice/analytics"
	"lattice/bizerror"
	"lattice/client/es"
	"lattice/common"
	"lattice/domain"
	"lattice/event"
	"lattice/indices"
	"lattice/infra/tracing"
	"lattice/orgs"
	"lattice/persistence"
	"lattice/projects"
	"lattice/search"
	"lattice/servehttp"
	"lattice/session"
	"lattice/sessions"
	"lattice/tasks"
	"lattice/workspaces"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	closer := tracing.Bootstrap(common.GetServiceName())
	if closer != nil {
		defer closer.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &account.Role{}, &account.UserRoleBinding{},
		&account.Permission{}, &account.RolePermissionBinding{},
		&domain.Organization{}, &domain.OrganizationMember{},
		&domain.Workspace{}, &domain.WorkspaceMember{},
		&domain.Project{}, &domain.ProjectMember{},
		&domain.Task{}, &event.EventRecord{}).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		logrus.Fatalf("failed to prepare default security configuration %v", err)
	}

	es.CreateClientFromEnv()
	indices.LoadTasksPageFunc = tasks.LoadTasksPage
	indices.StartCron()

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)

	guards := []gin.HandlerFunc{session.SimpleAuthFilter(), session.PolicyGuardFilter()}
	sessions.RegisterSessionHandler(engine, guards[0])
	account.RegisterUsersRestApis(engine, guards...)
	orgs.RegisterOrganizationsRestApis(engine, guards...)
	workspaces.RegisterWorkspacesRestApis(engine, guards...)
	projects.RegisterProjectsRestApis(engine, guards...)
	projects.RegisterProjectMembersRestApis(engine, guards...)
	tasks.RegisterTasksRestApis(engine, guards...)
	analytics.RegisterAnalyticsRestAPI(engine, guards...)
	search.RegisterSearchRestAPI(engine, guards...)
	indices.RegisterIndicesRestAPI(engine, guards...)

	servehttp.StartHTTPServer(engine)
}

package tasks_test

import (
	"context"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/indices"
	"lattice/orgs"
	"lattice/persistence"
	"lattice/projects"
	"lattice/session"
	"lattice/tasks"
	"lattice/testinfra"
	"lattice/workspaces"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tasks", func() {
	var (
		testDatabase *testinfra.TestDatabase
		project      *domain.Project
		indexed      []types.ID
		removed      []types.ID
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("lattice")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(
			&domain.Organization{}, &domain.OrganizationMember{},
			&domain.Workspace{}, &domain.WorkspaceMember{},
			&domain.Project{}, &domain.ProjectMember{},
			&domain.Task{}, &event.EventRecord{}).Error).To(BeNil())

		org, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
		workspace, err := workspaces.CreateWorkspace(&domain.WorkspaceCreating{OrgID: org.ID, Name: "ws1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
		project, err = projects.CreateProject(&domain.ProjectCreating{
			WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())

		indexed = []types.ID{}
		removed = []types.ID{}
		tasks.IndexTasksFunc = func(ts []domain.Task, s *session.Session) error {
			for _, task := range ts {
				indexed = append(indexed, task.ID)
			}
			return nil
		}
		indices.DeleteTaskDocumentFunc = func(id types.ID, s *session.Session) error {
			removed = append(removed, id)
			return nil
		}
	})
	AfterEach(func() {
		tasks.IndexTasksFunc = indices.IndexTasks
		indices.DeleteTaskDocumentFunc = indices.DeleteTaskDocument
		tasks.IsElevatedFunc = authority.IsElevated
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateTask", func() {
		It("should create tasks with sequential identifiers and the creator as reporter", func() {
			sec := testinfra.BuildSession(100)
			t1, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one", AssigneeID: 200}, sec)
			Expect(err).To(BeNil())
			Expect(t1.Identifier).To(Equal("demo-1"))
			Expect(t1.State).To(Equal(domain.TaskStatePending))
			Expect(t1.AssigneeId).To(Equal(types.ID(200)))
			Expect(t1.ReporterId).To(Equal(types.ID(100)))

			t2, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task two"}, sec)
			Expect(err).To(BeNil())
			Expect(t2.Identifier).To(Equal("demo-2"))

			Expect(indexed).To(Equal([]types.ID{t1.ID, t2.ID}))
		})

		It("should fail when the project does not exist", func() {
			sec := testinfra.BuildSession(100)
			_, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: 404, Name: "task one"}, sec)
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("QueryTasks", func() {
		It("should list all project tasks for elevated callers", func() {
			sec := testinfra.BuildSession(100)
			_, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one"}, sec)
			Expect(err).To(BeNil())
			_, err = tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task two", AssigneeID: 200}, sec)
			Expect(err).To(BeNil())

			tasks.IsElevatedFunc = func(ctx context.Context, actor authority.Actor, kind authority.ScopeKind, scopeId types.ID) (bool, error) {
				return true, nil
			}
			result, err := tasks.QueryTasks(&domain.TaskQuery{ProjectID: project.ID}, testinfra.BuildSession(300))
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(2))
		})

		It("should only list own tasks for non elevated callers", func() {
			secAnn := testinfra.BuildSession(100)
			_, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one"}, secAnn)
			Expect(err).To(BeNil())
			t2, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task two", AssigneeID: 200}, secAnn)
			Expect(err).To(BeNil())

			tasks.IsElevatedFunc = func(ctx context.Context, actor authority.Actor, kind authority.ScopeKind, scopeId types.ID) (bool, error) {
				return false, nil
			}
			result, err := tasks.QueryTasks(&domain.TaskQuery{ProjectID: project.ID}, testinfra.BuildSession(200))
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(1))
			Expect((*result)[0].ID).To(Equal(t2.ID))
		})

		It("should filter by name and state", func() {
			sec := testinfra.BuildSession(100)
			t1, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "alpha"}, sec)
			Expect(err).To(BeNil())
			_, err = tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "beta"}, sec)
			Expect(err).To(BeNil())

			tasks.IsElevatedFunc = func(ctx context.Context, actor authority.Actor, kind authority.ScopeKind, scopeId types.ID) (bool, error) {
				return true, nil
			}
			result, err := tasks.QueryTasks(&domain.TaskQuery{ProjectID: project.ID, Name: "alph"}, sec)
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(1))
			Expect((*result)[0].ID).To(Equal(t1.ID))

			result, err = tasks.QueryTasks(&domain.TaskQuery{ProjectID: project.ID,
				States: []string{domain.TaskStateDone}}, sec)
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(0))
		})
	})

	Describe("UpdateTask", func() {
		It("should update fields and refresh the index", func() {
			sec := testinfra.BuildSession(100)
			t1, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one"}, sec)
			Expect(err).To(BeNil())

			updated, err := tasks.UpdateTask(t1.ID, project.ID, &domain.TaskUpdating{
				Name: "task one!", State: domain.TaskStateDoing, AssigneeID: 200}, sec)
			Expect(err).To(BeNil())
			Expect(updated.Name).To(Equal("task one!"))
			Expect(updated.State).To(Equal(domain.TaskStateDoing))
			Expect(updated.AssigneeId).To(Equal(types.ID(200)))
			Expect(updated.Identifier).To(Equal("demo-1"))

			Expect(indexed).To(Equal([]types.ID{t1.ID, t1.ID}))
		})

		It("should not touch tasks of another project", func() {
			sec := testinfra.BuildSession(100)
			t1, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one"}, sec)
			Expect(err).To(BeNil())

			_, err = tasks.UpdateTask(t1.ID, 404, &domain.TaskUpdating{Name: "hijack"}, sec)
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})
	})

	Describe("DeleteTask", func() {
		It("should delete the task and remove it from the index", func() {
			sec := testinfra.BuildSession(100)
			t1, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one"}, sec)
			Expect(err).To(BeNil())

			Expect(tasks.DeleteTask(t1.ID, project.ID, sec)).To(BeNil())
			Expect(removed).To(Equal([]types.ID{t1.ID}))

			records := []domain.Task{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(0))
		})

		It("should be a no-op for tasks of another project", func() {
			sec := testinfra.BuildSession(100)
			t1, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: "task one"}, sec)
			Expect(err).To(BeNil())

			Expect(tasks.DeleteTask(t1.ID, 404, sec)).To(BeNil())
			Expect(len(removed)).To(Equal(0))

			records := []domain.Task{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
		})
	})

	Describe("LoadTasksPage", func() {
		It("should page over tasks in id order", func() {
			sec := testinfra.BuildSession(100)
			for _, name := range []string{"a", "b", "c"} {
				_, err := tasks.CreateTask(&domain.TaskCreation{ProjectID: project.ID, Name: name}, sec)
				Expect(err).To(BeNil())
			}

			page1, err := tasks.LoadTasksPage(sec, 1, 2)
			Expect(err).To(BeNil())
			Expect(len(page1)).To(Equal(2))
			page2, err := tasks.LoadTasksPage(sec, 2, 2)
			Expect(err).To(BeNil())
			Expect(len(page2)).To(Equal(1))
			page3, err := tasks.LoadTasksPage(sec, 3, 2)
			Expect(err).To(BeNil())
			Expect(len(page3)).To(Equal(0))
		})
	})
})

package projects_test

import (
	"context"

	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/orgs"
	"lattice/persistence"
	"lattice/projects"
	"lattice/testinfra"
	"lattice/workspaces"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Projects", func() {
	var (
		testDatabase *testinfra.TestDatabase
		workspace    *domain.Workspace
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("lattice")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(
			&domain.Organization{}, &domain.OrganizationMember{},
			&domain.Workspace{}, &domain.WorkspaceMember{},
			&domain.Project{}, &domain.ProjectMember{}, &event.EventRecord{}).Error).To(BeNil())

		org, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
		workspace, err = workspaces.CreateWorkspace(&domain.WorkspaceCreating{OrgID: org.ID, Name: "ws1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateProject", func() {
		It("should create the project and grant the creator the owner role", func() {
			sec := testinfra.BuildSession(100)
			p, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, sec)
			Expect(err).To(BeNil())
			Expect(p.ID).ToNot(BeZero())
			Expect(p.WorkspaceId).To(Equal(workspace.ID))
			Expect(p.Slug).To(Equal("demo"))
			Expect(p.Visibility).To(Equal(domain.ProjectVisibilityPrivate))
			Expect(p.NextTaskNum).To(Equal(1))

			members := []domain.ProjectMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(1))
			Expect(members[0].ProjectId).To(Equal(p.ID))
			Expect(members[0].MemberId).To(Equal(types.ID(100)))
			Expect(members[0].Role).To(Equal(domain.RoleOwner))
		})

		It("should reject duplicated slugs", func() {
			sec := testinfra.BuildSession(100)
			_, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, sec)
			Expect(err).To(BeNil())
			_, err = projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo2", Slug: "demo"}, sec)
			Expect(err).To(Equal(bizerror.ErrSlugAlreadyExists))
		})

		It("should fail when the workspace does not exist", func() {
			sec := testinfra.BuildSession(100)
			_, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: 404, Name: "Demo", Slug: "demo"}, sec)
			Expect(err).ToNot(BeNil())
		})

		It("should keep an explicit visibility", func() {
			sec := testinfra.BuildSession(100)
			p, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo",
				Visibility: domain.ProjectVisibilityPublic}, sec)
			Expect(err).To(BeNil())
			Expect(p.Visibility).To(Equal(domain.ProjectVisibilityPublic))
		})
	})

	Describe("DetailProject", func() {
		It("should load by id, and by slug when one is given", func() {
			sec := testinfra.BuildSession(100)
			p, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, sec)
			Expect(err).To(BeNil())

			byId, err := projects.DetailProject(p.ID, "", sec)
			Expect(err).To(BeNil())
			Expect(byId.ID).To(Equal(p.ID))

			bySlug, err := projects.DetailProject(0, "demo", sec)
			Expect(err).To(BeNil())
			Expect(bySlug.ID).To(Equal(p.ID))
		})

		It("should report unknown projects as not found", func() {
			sec := testinfra.BuildSession(100)
			_, err := projects.DetailProject(404, "", sec)
			Expect(err).To(Equal(bizerror.ErrNotFound))
			_, err = projects.DetailProject(0, "missing", sec)
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})
	})

	Describe("UpdateProject", func() {
		It("should update name and visibility", func() {
			sec := testinfra.BuildSession(100)
			p, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, sec)
			Expect(err).To(BeNil())

			Expect(projects.UpdateProject(p.ID, &domain.ProjectUpdating{
				Name: "Demo2", Visibility: domain.ProjectVisibilityPublic}, sec)).To(BeNil())

			updated, err := projects.DetailProject(p.ID, "", sec)
			Expect(err).To(BeNil())
			Expect(updated.Name).To(Equal("Demo2"))
			Expect(updated.Visibility).To(Equal(domain.ProjectVisibilityPublic))
		})
	})

	Describe("NextTaskIdentifier", func() {
		It("should consume the sequence one number at a time", func() {
			sec := testinfra.BuildSession(100)
			p, err := projects.CreateProject(&domain.ProjectCreating{
				WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, sec)
			Expect(err).To(BeNil())

			db := testDatabase.DS.GormDB(context.TODO())
			first, err := projects.NextTaskIdentifier(p.ID, db)
			Expect(err).To(BeNil())
			Expect(first).To(Equal("demo-1"))
			second, err := projects.NextTaskIdentifier(p.ID, db)
			Expect(err).To(BeNil())
			Expect(second).To(Equal("demo-2"))

			updated, err := projects.DetailProject(p.ID, "", sec)
			Expect(err).To(BeNil())
			Expect(updated.NextTaskNum).To(Equal(3))
		})
	})
})

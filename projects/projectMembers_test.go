package projects_test

import (
	"context"

	"lattice/account"
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

var _ = Describe("ProjectMembers", func() {
	var (
		testDatabase *testinfra.TestDatabase
		project      *domain.Project
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("lattice")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(
			&account.User{},
			&domain.Organization{}, &domain.OrganizationMember{},
			&domain.Workspace{}, &domain.WorkspaceMember{},
			&domain.Project{}, &domain.ProjectMember{}, &event.EventRecord{}).Error).To(BeNil())

		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.Save(&account.User{ID: 100, Name: "ann", Secret: account.HashSha256("123456")}).Error).To(BeNil())
		Expect(db.Save(&account.User{ID: 200, Name: "bob", Secret: account.HashSha256("123456")}).Error).To(BeNil())

		org, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
		workspace, err := workspaces.CreateWorkspace(&domain.WorkspaceCreating{OrgID: org.ID, Name: "ws1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
		project, err = projects.CreateProject(&domain.ProjectCreating{
			WorkspaceID: workspace.ID, Name: "Demo", Slug: "demo"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateProjectMember", func() {
		It("should grant a role to an existing account", func() {
			sec := testinfra.BuildSession(100)
			Expect(projects.CreateProjectMember(&domain.ProjectMemberCreation{
				ProjectID: project.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())

			members := []domain.ProjectMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where("member_id = ?", 200).
				Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(1))
			Expect(members[0].Role).To(Equal(domain.RoleMember))
		})

		It("should fail for unknown accounts", func() {
			sec := testinfra.BuildSession(100)
			Expect(projects.CreateProjectMember(&domain.ProjectMemberCreation{
				ProjectID: project.ID, MemberId: 404, Role: domain.RoleMember}, sec)).ToNot(BeNil())
		})

		It("should not let a user change their own role", func() {
			sec := testinfra.BuildSession(100)
			Expect(projects.CreateProjectMember(&domain.ProjectMemberCreation{
				ProjectID: project.ID, MemberId: 100, Role: domain.RoleManager}, sec)).To(Equal(bizerror.ErrMemberSelfGrant))
		})
	})

	Describe("QueryProjectMemberDetails", func() {
		It("should enrich memberships with project and account names", func() {
			sec := testinfra.BuildSession(100)
			Expect(projects.CreateProjectMember(&domain.ProjectMemberCreation{
				ProjectID: project.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())

			projectId := project.ID
			details, err := projects.QueryProjectMemberDetails(&domain.ProjectMemberQuery{ProjectID: &projectId}, sec)
			Expect(err).To(BeNil())
			Expect(len(*details)).To(Equal(2))

			memberId := types.ID(200)
			details, err = projects.QueryProjectMemberDetails(&domain.ProjectMemberQuery{
				ProjectID: &projectId, MemberID: &memberId}, sec)
			Expect(err).To(BeNil())
			Expect(len(*details)).To(Equal(1))
			Expect((*details)[0].ProjectName).To(Equal("Demo"))
			Expect((*details)[0].MemberName).To(Equal("bob"))
		})
	})

	Describe("DeleteProjectMember", func() {
		It("should remove the membership", func() {
			sec := testinfra.BuildSession(100)
			Expect(projects.CreateProjectMember(&domain.ProjectMemberCreation{
				ProjectID: project.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())
			Expect(projects.DeleteProjectMember(&domain.ProjectMemberDeletion{
				ProjectID: project.ID, MemberID: 200}, sec)).To(BeNil())

			members := []domain.ProjectMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where("member_id = ?", 200).
				Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(0))
		})

		It("should protect the last owner", func() {
			sec := testinfra.BuildSession(100)
			Expect(projects.DeleteProjectMember(&domain.ProjectMemberDeletion{
				ProjectID: project.ID, MemberID: 100}, sec)).To(Equal(bizerror.ErrLastOwnerDelete))
		})
	})
})

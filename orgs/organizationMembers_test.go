package orgs_test

import (
	"context"

	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/orgs"
	"lattice/persistence"
	"lattice/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("OrganizationMembers", func() {
	var (
		testDatabase *testinfra.TestDatabase
		org          *domain.Organization
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("lattice")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(
			&domain.Organization{}, &domain.OrganizationMember{}, &event.EventRecord{}).Error).To(BeNil())

		var err error
		org, err = orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, testinfra.BuildSession(100))
		Expect(err).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateOrganizationMember", func() {
		It("should grant a role and record the event", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())

			members := []domain.OrganizationMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where("member_id = ?", 200).
				Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(1))
			Expect(members[0].Role).To(Equal(domain.RoleMember))

			events := []event.EventRecord{}
			Expect(testDatabase.DS.GormDB(context.TODO()).
				Where("event_category = ?", event.EventCategoryMemberGranted).Find(&events).Error).To(BeNil())
			Expect(len(events)).To(Equal(1))
		})

		It("should change the role of an existing member", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 200, Role: domain.RoleManager}, sec)).To(BeNil())

			members := []domain.OrganizationMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where("member_id = ?", 200).
				Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(1))
			Expect(members[0].Role).To(Equal(domain.RoleManager))
		})

		It("should not let a user change their own role", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 100, Role: domain.RoleManager}, sec)).To(Equal(bizerror.ErrMemberSelfGrant))
		})

		It("should fail for unknown organizations", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: 404, MemberId: 200, Role: domain.RoleMember}, sec)).ToNot(BeNil())
		})
	})

	Describe("QueryOrganizationMembers", func() {
		It("should filter by organization and member", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())

			orgId := org.ID
			result, err := orgs.QueryOrganizationMembers(&domain.OrganizationMemberQuery{OrgID: &orgId}, sec)
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(2))

			memberId := types.ID(200)
			result, err = orgs.QueryOrganizationMembers(&domain.OrganizationMemberQuery{OrgID: &orgId, MemberID: &memberId}, sec)
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(1))
			Expect((*result)[0].MemberId).To(Equal(types.ID(200)))
		})
	})

	Describe("DeleteOrganizationMember", func() {
		It("should remove the membership and record the event", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 200, Role: domain.RoleMember}, sec)).To(BeNil())

			Expect(orgs.DeleteOrganizationMember(&domain.OrganizationMemberDeletion{
				OrgID: org.ID, MemberID: 200}, sec)).To(BeNil())

			members := []domain.OrganizationMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where("member_id = ?", 200).
				Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(0))

			events := []event.EventRecord{}
			Expect(testDatabase.DS.GormDB(context.TODO()).
				Where("event_category = ?", event.EventCategoryMemberRevoked).Find(&events).Error).To(BeNil())
			Expect(len(events)).To(Equal(1))
		})

		It("should protect the last owner", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.DeleteOrganizationMember(&domain.OrganizationMemberDeletion{
				OrgID: org.ID, MemberID: 100}, sec)).To(Equal(bizerror.ErrLastOwnerDelete))

			Expect(orgs.CreateOrganizationMember(&domain.OrganizationMemberCreation{
				OrgID: org.ID, MemberId: 200, Role: domain.RoleOwner}, sec)).To(BeNil())
			Expect(orgs.DeleteOrganizationMember(&domain.OrganizationMemberDeletion{
				OrgID: org.ID, MemberID: 100}, sec)).To(BeNil())
		})

		It("should be a no-op for unknown memberships", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.DeleteOrganizationMember(&domain.OrganizationMemberDeletion{
				OrgID: org.ID, MemberID: 404}, sec)).To(BeNil())
		})
	})
})

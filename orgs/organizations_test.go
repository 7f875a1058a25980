package orgs_test

import (
	"context"

	"lattice/domain"
	"lattice/event"
	"lattice/orgs"
	"lattice/persistence"
	"lattice/testinfra"

	"lattice/authority"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Organizations", func() {
	var (
		testDatabase *testinfra.TestDatabase
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("lattice")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(
			&domain.Organization{}, &domain.OrganizationMember{}, &event.EventRecord{}).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateOrganization", func() {
		It("should create the organization and grant the creator the owner role", func() {
			sec := testinfra.BuildSession(100)
			o, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, sec)
			Expect(err).To(BeNil())
			Expect(o.ID).ToNot(BeZero())
			Expect(o.Name).To(Equal("org1"))
			Expect(o.Owner).To(Equal(types.ID(100)))
			Expect(o.Creator).To(Equal(types.ID(100)))

			members := []domain.OrganizationMember{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Find(&members).Error).To(BeNil())
			Expect(len(members)).To(Equal(1))
			Expect(members[0].OrgId).To(Equal(o.ID))
			Expect(members[0].MemberId).To(Equal(types.ID(100)))
			Expect(members[0].Role).To(Equal(domain.RoleOwner))

			events := []event.EventRecord{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Find(&events).Error).To(BeNil())
			Expect(len(events)).To(Equal(1))
			Expect(events[0].SourceId).To(Equal(o.ID))
			Expect(events[0].EventCategory).To(Equal(event.EventCategory(event.EventCategoryCreated)))
		})

		It("should reject duplicated names", func() {
			sec := testinfra.BuildSession(100)
			_, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, sec)
			Expect(err).To(BeNil())
			_, err = orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, sec)
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("QueryOrganizations", func() {
		It("should only list organizations the user is a member of", func() {
			secAnn := testinfra.BuildSession(100)
			secBob := testinfra.BuildSession(200)
			o1, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, secAnn)
			Expect(err).To(BeNil())
			_, err = orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org2"}, secBob)
			Expect(err).To(BeNil())

			result, err := orgs.QueryOrganizations(secAnn)
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(1))
			Expect((*result)[0].ID).To(Equal(o1.ID))
		})

		It("should list all organizations for system permission holders", func() {
			secAnn := testinfra.BuildSession(100)
			secBob := testinfra.BuildSession(200)
			_, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, secAnn)
			Expect(err).To(BeNil())
			_, err = orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org2"}, secBob)
			Expect(err).To(BeNil())

			admin := testinfra.BuildSession(1, authority.SystemAdminPermissionID)
			result, err := orgs.QueryOrganizations(admin)
			Expect(err).To(BeNil())
			Expect(len(*result)).To(Equal(2))
		})
	})

	Describe("UpdateOrganization", func() {
		It("should update the name and record the change", func() {
			sec := testinfra.BuildSession(100)
			o, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, sec)
			Expect(err).To(BeNil())

			Expect(orgs.UpdateOrganization(o.ID, &domain.OrganizationUpdating{Name: "org1a"}, sec)).To(BeNil())

			updated := domain.Organization{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where(&domain.Organization{ID: o.ID}).
				First(&updated).Error).To(BeNil())
			Expect(updated.Name).To(Equal("org1a"))

			events := []event.EventRecord{}
			Expect(testDatabase.DS.GormDB(context.TODO()).
				Where("event_category = ?", event.EventCategoryPropertyUpdated).Find(&events).Error).To(BeNil())
			Expect(len(events)).To(Equal(1))
			Expect(events[0].UpdatedProperties[0].OldValue).To(Equal("org1"))
			Expect(events[0].UpdatedProperties[0].NewValue).To(Equal("org1a"))
		})

		It("should fail for unknown organizations", func() {
			sec := testinfra.BuildSession(100)
			Expect(orgs.UpdateOrganization(404, &domain.OrganizationUpdating{Name: "x"}, sec)).ToNot(BeNil())
		})
	})

	Describe("QueryOrganizationNames", func() {
		It("should map ids to names", func() {
			sec := testinfra.BuildSession(100)
			o1, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org1"}, sec)
			Expect(err).To(BeNil())
			o2, err := orgs.CreateOrganization(&domain.OrganizationCreating{Name: "org2"}, sec)
			Expect(err).To(BeNil())

			names, err := orgs.QueryOrganizationNames(context.TODO(), []types.ID{o1.ID, o2.ID})
			Expect(err).To(BeNil())
			Expect(names).To(Equal(map[types.ID]string{o1.ID: "org1", o2.ID: "org2"}))

			names, err = orgs.QueryOrganizationNames(context.TODO(), nil)
			Expect(err).To(BeNil())
			Expect(names).To(Equal(map[types.ID]string{}))
		})
	})
})

package asset_test

import (
	"assetflow/bizerror"
	"assetflow/domain"
	"assetflow/domain/asset"
	"assetflow/persistence"
	"assetflow/session"
	"assetflow/testinfra"
	"context"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("assetflow")
	assert.Nil(t, db.DS.GormDB(context.Background()).AutoMigrate(&asset.Asset{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	*testDatabase = db
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func createDemoAsset(t *testing.T, s *session.Session, code string) *asset.Asset {
	record, err := asset.CreateAsset(&asset.AssetCreation{
		Code: code, Name: "centrifugal pump", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"}, s)
	assert.Nil(t, err)
	return record
}

func TestCreateAsset(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should forbid creating into an org without a role", func(t *testing.T) {
		record, err := asset.CreateAsset(&asset.AssetCreation{
			Code: "A-1", Name: "pump", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR01"},
			testinfra.BuildSession(100, domain.OrgRoleCommon+"_2"))
		Expect(record).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should default to maintenance required", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		record := createDemoAsset(t, s, "A-1")
		Expect(record.ID).ToNot(BeZero())
		Expect(record.Status).To(Equal(asset.StatusActive))
		Expect(record.MaintRequired).To(BeTrue())
		Expect(record.CreatorID).To(Equal(types.ID(100)))

		bypass := false
		record, err := asset.CreateAsset(&asset.AssetCreation{
			Code: "A-2", Name: "cheap valve", CategoryKey: "TYPE_VALVE", OrgID: 1, BranchCode: "BR01",
			MaintRequired: &bypass}, s)
		Expect(err).To(BeNil())
		Expect(record.MaintRequired).To(BeFalse())
	})

	t.Run("should refuse a duplicated code within the org", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		createDemoAsset(t, s, "A-1")

		_, err := asset.CreateAsset(&asset.AssetCreation{
			Code: "A-1", Name: "another pump", CategoryKey: "TYPE_PUMP", OrgID: 1, BranchCode: "BR02"}, s)
		Expect(err).ToNot(BeNil())
	})
}

func TestQueryAssets(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should filter by org, category and status", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		createDemoAsset(t, s, "A-2")
		createDemoAsset(t, s, "A-1")

		records, err := asset.QueryAssets(&asset.AssetQuery{OrgID: 1}, s)
		Expect(err).To(BeNil())
		Expect(len(records)).To(Equal(2))
		Expect(records[0].Code).To(Equal("A-1"))
		Expect(records[1].Code).To(Equal("A-2"))

		records, err = asset.QueryAssets(&asset.AssetQuery{OrgID: 1, CategoryKey: "TYPE_VALVE"}, s)
		Expect(err).To(BeNil())
		Expect(records).To(BeEmpty())

		_, err = asset.QueryAssets(&asset.AssetQuery{OrgID: 2}, s)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestUpdateAsset(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should update name and vendor", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		record := createDemoAsset(t, s, "A-1")

		updated, err := asset.UpdateAsset(record.ID, 1, &asset.AssetUpdating{Name: "renamed pump", VendorID: 9}, s)
		Expect(err).To(BeNil())
		Expect(updated.Name).To(Equal("renamed pump"))
		Expect(updated.VendorID).To(Equal(types.ID(9)))
		Expect(updated.ChangeTime).ToNot(BeZero())

		// row level check rejects members of other orgs
		_, err = asset.UpdateAsset(record.ID, 2, &asset.AssetUpdating{Name: "x"},
			testinfra.BuildSession(200, domain.OrgRoleCommon+"_2"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestMarkScrapped(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should be idempotent guarded", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, domain.OrgRoleCommon+"_1")
		record := createDemoAsset(t, s, "A-1")
		db := testDatabase.DS.GormDB(context.Background())

		Expect(asset.MarkScrapped(record.ID, db)).To(BeNil())

		reloaded, err := asset.DetailAsset(record.ID, 1, s)
		Expect(err).To(BeNil())
		Expect(reloaded.Status).To(Equal(asset.StatusScrapped))

		// a second scrap of the same asset must not pass
		Expect(asset.MarkScrapped(record.ID, db)).To(Equal(bizerror.ErrStateInvalid))
	})
}

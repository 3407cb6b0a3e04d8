package account_test

import (
	"testing"

	"worksite/account"
	"worksite/bizerror"
	"worksite/domain"
	"worksite/persistence"
	"worksite/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("worksite")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&account.User{}).Error).To(BeNil())

	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	t.Run("only admins may create accounts", func(t *testing.T) {
		_, err := account.CreateUser(&account.UserCreation{Name: "bob", Secret: "s3cret!",
			GlobalRole: domain.GlobalRoleWorker},
			testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("secrets are stored hashed and never exposed", func(t *testing.T) {
		admin := testinfra.BuildSession(1, "root", domain.GlobalRoleAdmin)
		info, err := account.CreateUser(&account.UserCreation{Name: "bob", Secret: "s3cret!",
			Nickname: "Bob", GlobalRole: domain.GlobalRoleWorker}, admin)
		Expect(err).To(BeNil())
		Expect(info.Name).To(Equal("bob"))
		Expect(info.IsActive).To(BeTrue())

		var stored account.User
		db := persistence.ActiveDataSourceManager.GormDB(nil)
		Expect(db.Where("id = ?", info.ID).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("s3cret!")))
		Expect(stored.Secret).ToNot(Equal("s3cret!"))
	})
}

func TestDeactivateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer teardown(t, testDatabase)
	setup(t, &testDatabase)

	admin := testinfra.BuildSession(1, "root", domain.GlobalRoleAdmin)
	info, err := account.CreateUser(&account.UserCreation{Name: "bob", Secret: "s3cret!",
		GlobalRole: domain.GlobalRoleWorker}, admin)
	Expect(err).To(BeNil())

	t.Run("deactivation disables instead of deleting", func(t *testing.T) {
		Expect(account.DeactivateUser(info.ID, admin)).To(BeNil())

		var stored account.User
		db := persistence.ActiveDataSourceManager.GormDB(nil)
		Expect(db.Where("id = ?", info.ID).First(&stored).Error).To(BeNil())
		Expect(stored.IsActive).To(BeFalse())
		Expect(stored.IsDeleted).To(BeTrue())

		users, err := account.QueryUsers(admin)
		Expect(err).To(BeNil())
		Expect(len(*users)).To(BeZero())
	})

	t.Run("non admins may not deactivate", func(t *testing.T) {
		err := account.DeactivateUser(types.ID(999),
			testinfra.BuildSession(10, "pm", domain.GlobalRoleProjectManager))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

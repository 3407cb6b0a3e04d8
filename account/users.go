package account

import (
	"crypto/sha256"
	"encoding/hex"

	"worksite/bizerror"
	"worksite/domain"
	"worksite/idgen"
	"worksite/persistence"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc        = CreateUser
	QueryUsersFunc        = QueryUsers
	DeactivateUserFunc    = DeactivateUser
	QueryAccountNamesFunc = QueryAccountNames
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	Secret string   `json:"secret"`

	Nickname   string `json:"nickname"`
	GlobalRole string `json:"globalRole"`

	IsActive  bool `json:"isActive"`
	IsDeleted bool `json:"isDeleted"`
}

type UserInfo struct {
	ID         types.ID `json:"id"`
	Name       string   `json:"name"`
	Nickname   string   `json:"nickname"`
	GlobalRole string   `json:"globalRole"`
	IsActive   bool     `json:"isActive"`
}

type UserCreation struct {
	Name       string `json:"name" binding:"required,lte=32"`
	Secret     string `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname   string `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	GlobalRole string `json:"globalRole" binding:"required,oneof=ADMIN PROJECT_MANAGER QUALITY TEAM_LEADER WORKER"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation, sec *session.Session) (*UserInfo, error) {
	if !sec.HasGlobalRole(domain.GlobalRoleAdmin) {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), GlobalRole: c.GlobalRole, IsActive: true}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname,
		GlobalRole: user.GlobalRole, IsActive: user.IsActive}, nil
}

func QueryUsers(sec *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Model(&User{}).Where("is_deleted = ?", false).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

// DeactivateUser soft-disables an account. Users are never hard-deleted.
func DeactivateUser(userId types.ID, sec *session.Session) error {
	if !sec.HasGlobalRole(domain.GlobalRoleAdmin) {
		return bizerror.ErrForbidden
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{"is_active": false, "is_deleted": true}).Error
	})
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

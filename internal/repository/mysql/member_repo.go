package mysql

import (
	"civichub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommunityMemberRepository 成员行的读写。方法都接收 tx，
// 生命周期操作的"查再改"必须在同一事务里执行。
type CommunityMemberRepository struct {
	DB *gorm.DB
}

func NewCommunityMemberRepository(db *gorm.DB) *CommunityMemberRepository {
	return &CommunityMemberRepository{DB: db}
}

// lockForUpdate SELECT ... FOR UPDATE，锁住同社区的成员行。
// sqlite 不支持该语法且单写者天然串行，仅对 mysql 加锁。
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *CommunityMemberRepository) Create(tx *gorm.DB, member *model.CommunityMember) error {
	return tx.Create(member).Error
}

// Find 查 (community, user) 的成员行，带行锁
func (r *CommunityMemberRepository) Find(tx *gorm.DB, communityID, userID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := lockForUpdate(tx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByID 按成员行 id 查找（promote/demote 的目标定位方式），校验所属社区
func (r *CommunityMemberRepository) FindByID(tx *gorm.DB, communityID, memberID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := lockForUpdate(tx).
		Where("id = ? AND community_id = ?", memberID, communityID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountAdmins 统计社区当前管理员数，锁住计数涉及的行
func (r *CommunityMemberRepository) CountAdmins(tx *gorm.DB, communityID uint64) (int64, error) {
	var count int64
	err := lockForUpdate(tx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND role = ?", communityID, model.RoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *CommunityMemberRepository) CountMembers(tx *gorm.DB, communityID uint64) (int64, error) {
	var count int64
	err := tx.Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

// OldestOther 接任人选：除 excludeUserID 外入社最早的成员，joined_at 相同时按 id
func (r *CommunityMemberRepository) OldestOther(tx *gorm.DB, communityID, excludeUserID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := lockForUpdate(tx).
		Where("community_id = ? AND user_id <> ?", communityID, excludeUserID).
		Order("joined_at ASC, id ASC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByCommunity 成员列表，按入社时间升序
func (r *CommunityMemberRepository) ListByCommunity(tx *gorm.DB, communityID uint64) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := tx.Where("community_id = ?", communityID).
		Order("joined_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *CommunityMemberRepository) UpdateRole(tx *gorm.DB, memberID uint64, role model.Role) error {
	return tx.Model(&model.CommunityMember{}).
		Where("id = ?", memberID).
		Update("role", role).Error
}

func (r *CommunityMemberRepository) Delete(tx *gorm.DB, memberID uint64) error {
	return tx.Delete(&model.CommunityMember{}, memberID).Error
}

// DeleteByCommunity 社区解散时级联清空成员行
func (r *CommunityMemberRepository) DeleteByCommunity(tx *gorm.DB, communityID uint64) error {
	return tx.Where("community_id = ?", communityID).
		Delete(&model.CommunityMember{}).Error
}

// RoleOf 查询用户在社区内的角色；第二个返回值表示是否是成员
func (r *CommunityMemberRepository) RoleOf(tx *gorm.DB, communityID, userID uint64) (model.Role, bool, error) {
	var m model.CommunityMember
	err := tx.Select("role").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return model.RoleMember, false, nil
	}
	if err != nil {
		return model.RoleMember, false, err
	}
	return m.Role, true, nil
}

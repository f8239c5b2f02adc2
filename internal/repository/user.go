package repository

import (
	"errors"
	"time"

	"github.com/user/cinemax/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户（PasswordHash 已由调用方生成）
func (r *UserRepository) Create(user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return r.db.Create(user).Error
}

// FindByEmail 根据邮箱查找用户
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	return r.findOne("email = ?", email)
}

// FindByUsername 根据用户名查找用户
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	return r.findOne("username = ?", username)
}

// FindByIdentifier 根据邮箱或用户名查找用户
func (r *UserRepository) FindByIdentifier(identifier string) (*model.User, error) {
	return r.findOne("email = ? OR username = ?", identifier, identifier)
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(id int) (*model.User, error) {
	return r.findOne("id = ?", id)
}

func (r *UserRepository) findOne(query string, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckPassword 验证密码
func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// UpdateProfile 更新姓名
func (r *UserRepository) UpdateProfile(userID int, firstName, lastName string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"updated_at": time.Now(),
	}).Error
}

// UpdateEmail 更新邮箱
func (r *UserRepository) UpdateEmail(userID int, email string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email":      email,
		"updated_at": time.Now(),
	}).Error
}

// UpdatePassword 更新密码哈希
func (r *UserRepository) UpdatePassword(userID int, passwordHash string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	}).Error
}

// UpdateRole 更新用户角色
func (r *UserRepository) UpdateRole(userID int, role string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"role":       role,
		"updated_at": time.Now(),
	}).Error
}

// SetActive 启用/停用用户（软停用，不删行）
func (r *UserRepository) SetActive(userID int, active bool) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_active":  active,
		"updated_at": time.Now(),
	}).Error
}

// List 分页获取用户列表
func (r *UserRepository) List(limit, offset int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// Count 获取用户总数
func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

// Delete 删除用户（级联清理由调用方在事务中完成）
func (r *UserRepository) Delete(userID int) error {
	return r.db.Delete(&model.User{}, userID).Error
}

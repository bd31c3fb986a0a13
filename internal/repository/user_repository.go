package repository

import (
	"studybuddy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByKey(key string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("id = ?", key).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByLegacyID(legacyID int64) (*model.User, error) {
	var user model.User
	err := r.DB.Where("legacy_id = ?", legacyID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindFirst 返回任意一个用户，身份解析兜底用
func (r *UserRepository) FindFirst() (*model.User, error) {
	var user model.User
	err := r.DB.Order("created_at asc").First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastSeen(userKey string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userKey).
		Update("last_seen", time.Now()).Error
}

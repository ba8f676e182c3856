package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/watchparty/server/internal/repository"
)

func (r repo) CreateUser(ctx context.Context, params *repository.CreateUserParams) error {
	user := repository.User{
		Id:           params.UserId,
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
	}

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		r.logger.DebugContext(ctx, "failed to create user", "error", err)
		return err
	}

	return nil
}

func (r repo) GetUserById(ctx context.Context, userId string) (repository.User, error) {
	var user repository.User
	err := r.db.WithContext(ctx).Preload("Identities").First(&user, "id = ?", userId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.User{}, repository.ErrUserNotFound
		}
		return repository.User{}, err
	}

	return user, nil
}

func (r repo) GetUserByEmail(ctx context.Context, email string) (repository.User, error) {
	var user repository.User
	err := r.db.WithContext(ctx).Preload("Identities").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.User{}, repository.ErrUserNotFound
		}
		return repository.User{}, err
	}

	return user, nil
}

func (r repo) GetUserByIdentity(ctx context.Context, provider, subject string) (repository.User, error) {
	var identity repository.Identity
	err := r.db.WithContext(ctx).
		First(&identity, "provider = ? AND subject = ?", provider, subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.User{}, repository.ErrIdentityNotFound
		}
		return repository.User{}, err
	}

	return r.GetUserById(ctx, identity.UserId)
}

func (r repo) GetUsersByIds(ctx context.Context, userIds []string) ([]repository.User, error) {
	var users []repository.User
	if len(userIds) == 0 {
		return users, nil
	}

	if err := r.db.WithContext(ctx).Find(&users, "id IN ?", userIds).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r repo) UpdateUserPassword(ctx context.Context, userId, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&repository.User{}).
		Where("id = ?", userId).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func (r repo) AddIdentity(ctx context.Context, params *repository.AddIdentityParams) error {
	identity := repository.Identity{
		UserId:   params.UserId,
		Provider: params.Provider,
		Subject:  params.Subject,
		Email:    params.Email,
	}

	if err := r.db.WithContext(ctx).Create(&identity).Error; err != nil {
		r.logger.DebugContext(ctx, "failed to add identity", "error", err)
		return err
	}

	return nil
}

package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepository implements user.Backend using GORM and bcrypt.
type UserRepository struct {
	db         *gorm.DB
	tokens     user.TokenIssuer
	bcryptCost int
}

func NewUserRepository(db *gorm.DB, tokens user.TokenIssuer, bcryptCost int) *UserRepository {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserRepository{
		db:         db,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var rows []*userDatamodel.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*user.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, user.FromDataModel(m))
	}
	return out, nil
}

func (r *UserRepository) Register(ctx context.Context, dto user.RegisterUserDTO) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), r.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := dto.NewUser("user-" + uuid.NewString())
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", dto.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.ErrEmailAlreadyExists
		}
		return tx.Create(user.ToDataModel(u, string(hash))).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, internal.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	m, err := r.first(r.db.WithContext(ctx).Where("id = ?", id))
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(m), nil
}

func (r *UserRepository) Login(ctx context.Context, dto user.LoginDTO) (*user.AuthResult, error) {
	m, err := r.first(r.db.WithContext(ctx).Where("email = ?", dto.Email))
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	u := user.FromDataModel(m)
	token, err := r.tokens.IssueToken(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &user.AuthResult{User: u, Token: token}, nil
}

func (r *UserRepository) ChangePassword(ctx context.Context, id string, dto user.ChangePasswordDTO) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.first(tx.Where("id = ?", id))
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
			return internal.ErrIncorrectPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), r.bcryptCost)
		if err != nil {
			return internal.NewInternalError("failed to hash password", err)
		}
		return tx.Model(&userDatamodel.User{}).Where("id = ?", id).Update("password_hash", string(hash)).Error
	})
}

func (r *UserRepository) first(q *gorm.DB) (*userDatamodel.User, error) {
	var m userDatamodel.User
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"taskboard/apierror"
	"taskboard/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     models.Optional[string] `json:"name"`
	Email    models.Optional[string] `json:"email"`
	Password models.Optional[string] `json:"password"`
}

type LoginInput struct {
	Email    models.Optional[string] `json:"email"`
	Password models.Optional[string] `json:"password"`
}

// Credentials owns user records, password verification and bearer tokens.
type Credentials struct {
	db          *gorm.DB
	tokenLength int
}

// NewCredentials returns a credential store issuing tokens of tokenLength
// hex characters.
func NewCredentials(db *gorm.DB, tokenLength int) *Credentials {
	if tokenLength <= 0 {
		tokenLength = 40
	}
	return &Credentials{db: db, tokenLength: tokenLength}
}

func (c *Credentials) Register(ctx context.Context, in RegisterInput) (models.UserView, error) {
	if err := requireFields(
		field{"name", in.Name},
		field{"email", in.Email},
		field{"password", in.Password},
	); err != nil {
		return models.UserView{}, err
	}

	db := c.db.WithContext(ctx)
	if _, err := c.findByEmail(db, in.Email.Value); err == nil {
		return models.UserView{}, errEmailTaken()
	} else if !apierror.IsKind(err, apierror.KindNotFound) {
		return models.UserView{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password.Value), bcrypt.DefaultCost)
	if err != nil {
		return models.UserView{}, err
	}
	token, err := c.generateToken()
	if err != nil {
		return models.UserView{}, err
	}

	user := models.User{
		Name:         in.Name.Value,
		Email:        in.Email.Value,
		PasswordHash: string(hash),
		Token:        token,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.UserView{}, errEmailTaken()
		}
		return models.UserView{}, apierror.Storage("failed to create user", err)
	}

	return user.View(), nil
}

// Login verifies the password and rotates the user's token. The previous
// token stops authenticating as soon as this returns.
func (c *Credentials) Login(ctx context.Context, in LoginInput) (models.UserView, error) {
	if err := requireFields(
		field{"email", in.Email},
		field{"password", in.Password},
	); err != nil {
		return models.UserView{}, err
	}

	db := c.db.WithContext(ctx)
	user, err := c.findByEmail(db, in.Email.Value)
	if err != nil {
		if apierror.IsKind(err, apierror.KindNotFound) {
			return models.UserView{}, errInvalidCredentials()
		}
		return models.UserView{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password.Value)); err != nil {
		return models.UserView{}, errInvalidCredentials()
	}

	token, err := c.generateToken()
	if err != nil {
		return models.UserView{}, err
	}
	if err := db.Model(user).Update("token", token).Error; err != nil {
		return models.UserView{}, apierror.Storage("failed to rotate token", err)
	}
	user.Token = token

	return user.View(), nil
}

// Authenticate resolves an Authorization header of the form "Bearer <token>".
func (c *Credentials) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, apierror.Unauthorized("Unauthorized")
	}

	var user models.User
	err := c.db.WithContext(ctx).Where("token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("Unauthorized")
		}
		return nil, apierror.Storage("failed to look up token", err)
	}
	return &user, nil
}

func (c *Credentials) findByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("User not found")
		}
		return nil, apierror.Storage("failed to look up user", err)
	}
	return &user, nil
}

func (c *Credentials) generateToken() (string, error) {
	bytes := make([]byte, (c.tokenLength+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func errEmailTaken() error {
	return apierror.Conflict("Email already registered")
}

func errInvalidCredentials() error {
	return apierror.Unauthorized("Invalid credentials")
}

package handler

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/service"
)

var passwordRules = []validation.Rule{validation.Required, validation.Length(8, 72)}

type registerReq struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Patronymic      *string `json:"patronymic"`
}

func (r registerReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Patronymic, validation.NilOrNotEmpty, validation.Length(1, 100)),
	)
}

func (r registerReq) input() service.RegisterInput {
	return service.RegisterInput{
		Email:           strings.TrimSpace(r.Email),
		Password:        r.Password,
		PasswordConfirm: r.PasswordConfirm,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Patronymic:      r.Patronymic,
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type forgotReq struct {
	Email string `json:"email"`
}

func (r forgotReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type resetReq struct {
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"new_password" form:"new_password"`
}

func (r resetReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, passwordRules...),
	)
}

type profileReq struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Patronymic *string `json:"patronymic"`
}

func (r profileReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Patronymic, validation.Length(0, 100)),
	)
}

type ruleReq struct {
	Role   string `json:"role"`
	Object string `json:"object"`
	model.Permissions
}

func (r ruleReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required),
		validation.Field(&r.Object, validation.Required),
	)
}

type roleReq struct {
	Role string `json:"role"`
}

func (r roleReq) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Role, validation.Required))
}

// userResp is the public shape of an account; the password hash never
// leaves the service layer.
type userResp struct {
	ID         uint64   `json:"id"`
	Email      string   `json:"email"`
	FirstName  *string  `json:"first_name"`
	LastName   *string  `json:"last_name"`
	Patronymic *string  `json:"patronymic"`
	IsActive   bool     `json:"is_active"`
	IsVerified bool     `json:"is_verified"`
	Roles      []string `json:"roles,omitempty"`
}

func newUserResp(u model.User, roles []string) userResp {
	return userResp{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Patronymic: u.Patronymic,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		Roles:      roles,
	}
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

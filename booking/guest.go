package booking

import (
	"strings"

	"github.com/google/uuid"

	"moviebook-cli/model"
	"moviebook-cli/validation"
)

// Guest holds the contact details typed in by someone booking without an
// account.
type Guest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"notblank"`
}

func (g Guest) Validate() error {
	return validation.Struct(g.trimmed())
}

func (g Guest) trimmed() Guest {
	return Guest{
		Name:  strings.TrimSpace(g.Name),
		Email: strings.TrimSpace(g.Email),
		Phone: strings.TrimSpace(g.Phone),
	}
}

// userDTO builds the account created for a guest. The email doubles as the
// username.
func (g Guest) userDTO(credential string) model.UserDTO {
	g = g.trimmed()
	return model.UserDTO{
		Username: g.Email,
		Email:    g.Email,
		Password: credential,
		Name:     g.Name,
		Phone:    g.Phone,
		UserType: model.UserTypeCustomer,
	}
}

// GuestCredential returns a throwaway password for guest accounts. Guests
// never log in with it.
func GuestCredential() string {
	return "Guest-" + uuid.NewString()
}

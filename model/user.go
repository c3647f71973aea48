package model

const (
	UserTypeCustomer    = "CUSTOMER"
	UserTypeCinemaAdmin = "CINEMA_ADMIN"
)

type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	UserType string `json:"userType"`
}

func (u User) IsAdmin() bool {
	return u.UserType == UserTypeCinemaAdmin
}

type UserDTO struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone"`
	UserType string `json:"userType" validate:"required,oneof=CUSTOMER CINEMA_ADMIN"`
}

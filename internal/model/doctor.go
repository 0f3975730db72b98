package model

type Doctor struct {
	Base
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Specialty string `db:"specialty" json:"specialty"`
	Phone     string `db:"phone" json:"phone,omitempty"`
}

package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	Username  string `validate:"required"       json:"username"`
	Email     string `validate:"required,email" json:"email"`
	Password  string `validate:"required"       json:"password"`
	FirstName string `                          json:"firstName"`
	LastName  string `                          json:"lastName"`
	Phone     string `validate:"omitempty,e164" json:"phone"`
	IsSeller  bool   `                          json:"isSeller"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("username", r.Username).Bool("isSeller", r.IsSeller)
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R Register
	return json.Marshal(R(r))
}

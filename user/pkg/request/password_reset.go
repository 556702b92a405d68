package request

import "encoding/json"

type RequestPasswordReset struct {
	Email string `validate:"required,email" json:"email"`
}

type ResetPassword struct {
	Password string `validate:"required" json:"password"`
}

func (r ResetPassword) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R ResetPassword
	return json.Marshal(R(r))
}

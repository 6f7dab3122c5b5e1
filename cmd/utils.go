package main

import (
	"github.com/siahsang/yatube/internal/validator"
)

func checkEmail(v *validator.Validator, email string) {
	v.CheckNotBlank(email, "email", "This field is required.")
	if email != "" {
		v.CheckEmail(email, "email", "Enter a valid email address.")
	}
}

func checkUsername(v *validator.Validator, username string) {
	v.CheckNotBlank(username, "username", "This field is required.")
	v.CheckMaxLength(username, 150, "username", "Ensure this value has at most 150 characters.")
	v.Check(username == "" || validator.IsMatch(username, validator.UsernameRX), "username",
		"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
}

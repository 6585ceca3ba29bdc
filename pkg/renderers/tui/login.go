package tui

import (
	"context"
	"errors"
	"strings"
)

// PromptCredentials asks for an email and a password. defaultEmail prefills
// the email prompt.
func PromptCredentials(ctx context.Context, driver PromptDriver, defaultEmail string) (email, password string, err error) {
	email, err = driver.Input(ctx, InputConfig{
		Message:   "Correo",
		Default:   defaultEmail,
		Validator: required("el correo es obligatorio"),
	})
	if err != nil {
		return "", "", err
	}
	password, err = driver.Password(ctx, InputConfig{
		Message:   "Contraseña",
		Validator: required("la contraseña es obligatoria"),
	})
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

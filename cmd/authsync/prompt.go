package main

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
)

// promptCredentials asks for whatever of email and password is missing.
func promptCredentials(title, email string) (string, string, error) {
	var password string

	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&email).
			Validate(validateEmail))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Validate(func(s string) error {
			if s == "" {
				return errors.New("password is required")
			}
			return nil
		}))

	form := huh.NewForm(huh.NewGroup(fields...).Title(title))
	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(email), password, nil
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("not a valid email address")
	}
	return nil
}

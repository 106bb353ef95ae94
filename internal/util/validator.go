package util

import (
	"errors"
	"net/mail"
	"strings"
)

const minPasswordLen = 8

// ValidateEmail rejeita e-mails vazios ou malformados.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidatePassword aplica o requisito mínimo de tamanho.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString falha quando o campo está vazio ou só tem espaços.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

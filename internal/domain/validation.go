package domain

import (
	"regexp"
	"strings"
)

var (
	loginRe = regexp.MustCompile(`^[A-Za-z0-9]{4,}$`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

func ValidLogin(s string) bool {
	return loginRe.MatchString(s)
}

// Пароль: мин 8 символов, буквы в обоих регистрах, хотя бы одна цифра
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	return upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s)
}

// Валидация входа на границе: ядро получает уже корректные значения
func ValidTaskInput(title, description string) bool {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	return title != "" && len(title) <= 200 && description != "" && len(description) <= 2000
}

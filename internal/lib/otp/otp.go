// Package otp реализует генерацию одноразовых кодов входа и их
// безопасное хранение: в Redis попадает только bcrypt-хэш кода.
//
// NewCode создаёт шестизначный цифровой код на криптографическом ГСЧ.
// GetHash и CompareHash повторяют схему хранения паролей через bcrypt.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// CodeLength количество цифр в одноразовом коде.
const CodeLength = 6

// NewCode возвращает случайный шестизначный код с ведущими нулями.
func NewCode() (string, error) {
	const op = "otp.NewCode"
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GetHash принимает одноразовый код и возвращает его bcrypt-хэш.
//
// Используется для хранения кода в Redis до момента проверки.
func GetHash(code string) (string, error) {
	const op = "otp.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает bcrypt-хэш с введённым кодом.
//
// Возвращает nil, если код соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalCode string) error {
	const op = "otp.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalCode)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

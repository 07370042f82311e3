package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password pairs a plaintext password with its bcrypt hash.
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	if p.Hash == "" {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

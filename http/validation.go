package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"rinha/db"
)

var validate = validator.New()

// PessoaInput is the wire form of a create request. Null and absent fields decode to nil.
type PessoaInput struct {
	Apelido    *string  `json:"apelido" validate:"required,min=1,max=32"`
	Nome       *string  `json:"nome" validate:"required,min=1,max=100"`
	Nascimento *string  `json:"nascimento" validate:"required,datetime=2006-01-02"`
	Stack      []string `json:"stack" validate:"omitempty,dive,min=1,max=32"`
}

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// ValidatePessoa checks field rules and converts the input to a db.NovaPessoa.
func ValidatePessoa(input PessoaInput) (db.NovaPessoa, error) {
	if err := validate.Struct(input); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return db.NovaPessoa{}, err
		}

		invalid := &ValidationError{}
		for _, fe := range fieldErrors {
			invalid.Fields = append(invalid.Fields, fe.Namespace())
		}
		return db.NovaPessoa{}, invalid
	}

	nascimento, err := time.Parse(db.DateLayout, *input.Nascimento)
	if err != nil {
		return db.NovaPessoa{}, &ValidationError{Fields: []string{"PessoaInput.Nascimento"}}
	}

	return db.NovaPessoa{
		Apelido:    *input.Apelido,
		Nome:       *input.Nome,
		Nascimento: nascimento,
		Stack:      input.Stack,
	}, nil
}

// Package dto contains the wire-level request and response shapes of the
// REST and page surfaces, together with the request validation rules.
package dto

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared across requests; the instance caches struct metadata.
var validate = validator.New()

// telefonoPattern is the allowed shape of a phone number.
var telefonoPattern = regexp.MustCompile(`^[+0-9 ()-]{6,20}$`)

// ContattoRequest is the body of POST and PUT calls as well as the HTML
// form payload. It never carries an id: identifiers are assigned by the
// database and addressed through the URL.
type ContattoRequest struct {
	Nome     string  `json:"nome"     form:"nome"     validate:"notblank"`
	Cognome  string  `json:"cognome"  form:"cognome"  validate:"notblank"`
	Telefono *string `json:"telefono" form:"telefono" validate:"omitempty,telefono"`
	Email    string  `json:"email"    form:"email"    validate:"notblank,email,max=120"`
}

// ContattoResponse is the JSON representation of a stored contact.
type ContattoResponse struct {
	Id       int64   `json:"id"`
	Nome     string  `json:"nome"`
	Cognome  string  `json:"cognome"`
	Telefono *string `json:"telefono,omitempty"`
	Email    string  `json:"email"`
}

// Page is the envelope for paginated results, mirroring the fields that
// clients of the searchsort endpoint rely on.
type Page struct {
	Content       []ContattoResponse `json:"content"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
	Number        int                `json:"number"`
	Size          int                `json:"size"`
}

func init() {
	// notblank requires at least one non-whitespace character, so a string
	// of spaces is rejected just like a missing field.
	err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(err)
	}
	// telefono allows digits, spaces, parentheses, plus and dash, with a
	// length between 6 and 20 characters.
	err = validate.RegisterValidation("telefono", func(fl validator.FieldLevel) bool {
		return telefonoPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Normalize drops an empty telefono. HTML forms always submit the field,
// so an untouched input arrives as an empty string rather than as absent.
func (r *ContattoRequest) Normalize() {
	if r.Telefono != nil && *r.Telefono == "" {
		r.Telefono = nil
	}
}

// Validate checks the request against the field rules and returns one
// message per violated field, keyed by the lowercase field name. A nil map
// means the request is valid.
func (r *ContattoRequest) Validate() map[string]string {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"richiesta": err.Error()}
	}
	problems := make(map[string]string, len(violations))
	for _, violation := range violations {
		switch violation.Field() {
		case "Nome":
			problems["nome"] = "il nome è obbligatorio"
		case "Cognome":
			problems["cognome"] = "il cognome è obbligatorio"
		case "Telefono":
			problems["telefono"] = "il telefono deve rispettare il formato [+0-9 ()-] con lunghezza 6-20"
		case "Email":
			problems["email"] = "email obbligatoria, valida e lunga al massimo 120 caratteri"
		}
	}
	return problems
}

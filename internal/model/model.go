package model

// Contatto is the data structure for an address book entry. The Id field is
// assigned by the database on the first insert and never changes afterwards.
// Telefono is the only optional field.
type Contatto struct {
	Id       int64   `json:"id"                 db:"id"`
	Nome     string  `json:"nome"               db:"nome"`
	Cognome  string  `json:"cognome"            db:"cognome"`
	Telefono *string `json:"telefono,omitempty" db:"telefono"`
	Email    string  `json:"email"              db:"email"`
}

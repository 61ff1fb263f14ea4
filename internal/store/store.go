// Package store is the persistence layer for contacts. It speaks plain SQL
// through sqlx against a MySQL-compatible database and is the only package
// that knows the contatti table exists.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/matteo.albano/rubrica-service/internal/model"
)

// ErrNotFound reports that no contact exists for the requested id.
var ErrNotFound = errors.New("contatto non trovato")

// DefaultPageSize is used when a page request does not specify a size.
const DefaultPageSize = 10

// DefaultSort is the column pages are ordered by unless requested otherwise.
const DefaultSort = "cognome"

// allowedSort are the columns a caller may order results by. Anything else
// falls back to DefaultSort; the column name ends up inside the SQL string,
// so it must never come from the request verbatim.
var allowedSort = []string{"id", "nome", "cognome", "telefono", "email"}

// PageRequest describes which page of the ordered result set is wanted.
// Number is zero-based.
type PageRequest struct {
	Number    int
	Size      int
	Sort      string
	Ascending bool
}

// Page carries one page of contacts together with the totals computed by
// the database over the full result set.
type Page struct {
	Content       []model.Contatto
	TotalElements int64
	TotalPages    int
	Number        int
	Size          int
}

// ContattoStore is the contract of the persistence layer. It is satisfied
// by SQL below and by test doubles.
type ContattoStore interface {
	FindAll() ([]model.Contatto, error)
	FindAllPaged(page PageRequest) (*Page, error)
	FindByID(id int64) (*model.Contatto, error)
	FindByNome(nome string) ([]model.Contatto, error)
	FindByCognome(cognome string) ([]model.Contatto, error)
	FindByNomeAndCognome(nome, cognome string) ([]model.Contatto, error)
	FindByNomeLike(frammento string) ([]model.Contatto, error)
	FindByNomeLikePaged(frammento string, page PageRequest) (*Page, error)
	FindByCognomeLikePaged(frammento string, page PageRequest) (*Page, error)
	Save(contatto model.Contatto) (model.Contatto, error)
	DeleteByID(id int64) error
}

// SQL implements ContattoStore on a relational database.
type SQL struct {
	db *sqlx.DB

	// Prepared statements offer a significant speed increase if executed
	// many times.
	insert        *sqlx.NamedStmt
	upsert        *sqlx.NamedStmt
	selectWhereId *sqlx.Stmt
	deleteWhereId *sqlx.Stmt
}

// NewSQL wraps the given database handle and prepares the statements of the
// hot paths. The handle can be a real database for production use or a mock
// database within unit tests.
func NewSQL(sqlDB *sql.DB) (*SQL, error) {
	s := &SQL{db: sqlx.NewDb(sqlDB, "mysql")}

	var err error
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO contatti (nome, cognome, telefono, email)
		VALUES (:nome, :cognome, :telefono, :email)
	`)
	if err != nil {
		return nil, err
	}
	s.upsert, err = s.db.PrepareNamed(`
		INSERT INTO contatti (id, nome, cognome, telefono, email)
		VALUES (:id, :nome, :cognome, :telefono, :email)
		ON DUPLICATE KEY UPDATE
			nome=VALUES(nome), cognome=VALUES(cognome),
			telefono=VALUES(telefono), email=VALUES(email)
	`)
	if err != nil {
		return nil, err
	}
	s.selectWhereId, err = s.db.Preparex(`
		SELECT * FROM contatti WHERE id=?
	`)
	if err != nil {
		return nil, err
	}
	s.deleteWhereId, err = s.db.Preparex(`
		DELETE FROM contatti WHERE id=?
	`)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindAll returns every contact in insertion order.
func (s *SQL) FindAll() ([]model.Contatto, error) {
	contatti := []model.Contatto{}
	err := s.db.Select(&contatti, `SELECT * FROM contatti`)
	if err != nil {
		return nil, err
	}
	return contatti, nil
}

// FindByID returns the contact with the given id, or ErrNotFound.
func (s *SQL) FindByID(id int64) (*model.Contatto, error) {
	var contatto model.Contatto
	err := s.selectWhereId.Get(&contatto, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contatto, nil
}

// FindByNome returns the contacts whose first name matches exactly.
func (s *SQL) FindByNome(nome string) ([]model.Contatto, error) {
	contatti := []model.Contatto{}
	err := s.db.Select(&contatti, `SELECT * FROM contatti WHERE nome=?`, nome)
	if err != nil {
		return nil, err
	}
	return contatti, nil
}

// FindByCognome returns the contacts whose surname matches exactly.
func (s *SQL) FindByCognome(cognome string) ([]model.Contatto, error) {
	contatti := []model.Contatto{}
	err := s.db.Select(&contatti, `SELECT * FROM contatti WHERE cognome=?`, cognome)
	if err != nil {
		return nil, err
	}
	return contatti, nil
}

// FindByNomeAndCognome returns the contacts matching both names exactly.
func (s *SQL) FindByNomeAndCognome(nome, cognome string) ([]model.Contatto, error) {
	contatti := []model.Contatto{}
	err := s.db.Select(&contatti,
		`SELECT * FROM contatti WHERE nome=? AND cognome=?`, nome, cognome)
	if err != nil {
		return nil, err
	}
	return contatti, nil
}

// FindByNomeLike returns the contacts whose first name contains the given
// fragment, ignoring case.
func (s *SQL) FindByNomeLike(frammento string) ([]model.Contatto, error) {
	contatti := []model.Contatto{}
	err := s.db.Select(&contatti,
		`SELECT * FROM contatti WHERE LOWER(nome) LIKE LOWER(?)`,
		"%"+frammento+"%")
	if err != nil {
		return nil, err
	}
	return contatti, nil
}

// FindAllPaged returns one page over all contacts.
func (s *SQL) FindAllPaged(page PageRequest) (*Page, error) {
	return s.selectPage(page,
		`SELECT COUNT(*) FROM contatti`,
		`SELECT * FROM contatti`)
}

// FindByNomeLikePaged returns one page of the contacts whose first name
// contains the fragment, ignoring case.
func (s *SQL) FindByNomeLikePaged(frammento string, page PageRequest) (*Page, error) {
	return s.selectPage(page,
		`SELECT COUNT(*) FROM contatti WHERE LOWER(nome) LIKE LOWER(?)`,
		`SELECT * FROM contatti WHERE LOWER(nome) LIKE LOWER(?)`,
		"%"+frammento+"%")
}

// FindByCognomeLikePaged returns one page of the contacts whose surname
// contains the fragment, ignoring case.
func (s *SQL) FindByCognomeLikePaged(frammento string, page PageRequest) (*Page, error) {
	return s.selectPage(page,
		`SELECT COUNT(*) FROM contatti WHERE LOWER(cognome) LIKE LOWER(?)`,
		`SELECT * FROM contatti WHERE LOWER(cognome) LIKE LOWER(?)`,
		"%"+frammento+"%")
}

// selectPage runs the count query and then the select query extended with
// ORDER BY, LIMIT and OFFSET, and assembles the page envelope. The filter
// arguments apply to both queries.
func (s *SQL) selectPage(page PageRequest, countQuery, selectQuery string, args ...interface{}) (*Page, error) {
	page = normalize(page)

	var total int64
	if err := s.db.Get(&total, countQuery, args...); err != nil {
		return nil, err
	}

	direction := "ASC"
	if !page.Ascending {
		direction = "DESC"
	}
	paged := fmt.Sprintf("%s ORDER BY %s %s LIMIT ? OFFSET ?",
		selectQuery, page.Sort, direction)
	contatti := []model.Contatto{}
	args = append(args, page.Size, page.Number*page.Size)
	if err := s.db.Select(&contatti, paged, args...); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(page.Size) - 1) / int64(page.Size))
	return &Page{
		Content:       contatti,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        page.Number,
		Size:          page.Size,
	}, nil
}

// normalize fills in the defaults of a page request and rejects sort
// columns outside the whitelist.
func normalize(page PageRequest) PageRequest {
	if page.Number < 0 {
		page.Number = 0
	}
	if page.Size < 1 {
		page.Size = DefaultPageSize
	}
	if !contains(allowedSort, page.Sort) {
		page.Sort = DefaultSort
	}
	return page
}

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}

// Save inserts the contact when its id is unset and upserts by id
// otherwise. Either way the write runs in its own transaction and the
// stored version, id included, is returned.
func (s *SQL) Save(contatto model.Contatto) (model.Contatto, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.Contatto{}, err
	}
	if contatto.Id == 0 {
		result, errExec := tx.NamedStmt(s.insert).Exec(&contatto)
		if errExec != nil {
			tx.Rollback()
			return model.Contatto{}, errExec
		}
		id, errId := result.LastInsertId()
		if errId != nil {
			tx.Rollback()
			return model.Contatto{}, errId
		}
		contatto.Id = id
	} else {
		if _, errExec := tx.NamedStmt(s.upsert).Exec(&contatto); errExec != nil {
			tx.Rollback()
			return model.Contatto{}, errExec
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Contatto{}, err
	}
	return contatto, nil
}

// DeleteByID removes the contact with the given id. Deleting an id that
// does not exist is not an error.
func (s *SQL) DeleteByID(id int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Stmtx(s.deleteWhereId).Exec(id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

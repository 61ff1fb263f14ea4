package store

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gitlab.com/matteo.albano/rubrica-service/internal/model"
)

var contattiColumns = []string{"id", "nome", "cognome", "telefono", "email"}

func newMockStore(t *testing.T) (*SQL, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	mock.ExpectPrepare(`INSERT INTO contatti \(nome`)
	mock.ExpectPrepare(`INSERT INTO contatti \(id`)
	mock.ExpectPrepare(`SELECT \* FROM contatti WHERE id=\?`)
	mock.ExpectPrepare(`DELETE FROM contatti WHERE id=\?`)
	s, err := NewSQL(db)
	if err != nil {
		t.Fatalf("could not prepare the store: %s", err)
	}
	return s, mock, db
}

func telefono(value string) *string {
	return &value
}

// TestFindByID verifies the happy path of a single-row lookup.
func TestFindByID(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM contatti WHERE id=\?`).
		WithArgs(int64(29)).
		WillReturnRows(mock.NewRows(contattiColumns).
			AddRow(29, "Erika", "Mustermann", "+49 0815 4711", "erika@example.com"))

	contatto, err := s.FindByID(29)
	assert.NoError(t, err)
	assert.Equal(t, int64(29), contatto.Id)
	assert.Equal(t, "Erika", contatto.Nome)
	assert.Equal(t, "Mustermann", contatto.Cognome)
	assert.Equal(t, "+49 0815 4711", *contatto.Telefono)
	assert.Equal(t, "erika@example.com", contatto.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByIDNotFound verifies that a missing row becomes ErrNotFound.
func TestFindByIDNotFound(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM contatti WHERE id=\?`).
		WithArgs(int64(9999)).
		WillReturnRows(mock.NewRows(contattiColumns))

	contatto, err := s.FindByID(9999)
	assert.Nil(t, contatto)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveInsert verifies that saving a contact without an id runs the
// insert inside a transaction and returns the assigned id.
func TestSaveInsert(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO contatti \(nome`).
		WithArgs("Mario", "Rossi", "111", "mario@ex.com").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	saved, err := s.Save(model.Contatto{
		Nome: "Mario", Cognome: "Rossi",
		Telefono: telefono("111"), Email: "mario@ex.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), saved.Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveUpsert verifies that saving a contact with an id runs the upsert
// inside a transaction and keeps the id.
func TestSaveUpsert(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO contatti \(id`).
		WithArgs(int64(17), "Mario", "Bianchi", "222", "mario.bianchi@ex.com").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	saved, err := s.Save(model.Contatto{
		Id: 17, Nome: "Mario", Cognome: "Bianchi",
		Telefono: telefono("222"), Email: "mario.bianchi@ex.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(17), saved.Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveInsertRollsBackOnError verifies that a failing insert rolls the
// transaction back and surfaces the error.
func TestSaveInsertRollsBackOnError(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO contatti \(nome`).
		WithArgs("Mario", "Rossi", nil, "mario@ex.com").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := s.Save(model.Contatto{Nome: "Mario", Cognome: "Rossi", Email: "mario@ex.com"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDeleteByID verifies that deletion runs inside a transaction and that
// zero affected rows is not an error.
func TestDeleteByID(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM contatti WHERE id=\?`).
		WithArgs(int64(9999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, s.DeleteByID(9999))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindAllPagedTotals verifies the page envelope math: fifteen rows at
// a page size of ten make two pages.
func TestFindAllPagedTotals(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contatti`).
		WillReturnRows(mock.NewRows([]string{"COUNT(*)"}).AddRow(15))
	rows := mock.NewRows(contattiColumns)
	for i := 0; i < 10; i++ {
		rows.AddRow(i+1, "Nome", "Cognome", nil, "nome@example.com")
	}
	mock.ExpectQuery(`SELECT \* FROM contatti ORDER BY cognome ASC LIMIT \? OFFSET \?`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	page, err := s.FindAllPaged(PageRequest{Size: 10, Sort: "cognome", Ascending: true})
	assert.NoError(t, err)
	assert.Equal(t, int64(15), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 10, len(page.Content))
	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 10, page.Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindAllPagedSecondPage verifies the offset of a later page and the
// descending direction.
func TestFindAllPagedSecondPage(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contatti`).
		WillReturnRows(mock.NewRows([]string{"COUNT(*)"}).AddRow(15))
	rows := mock.NewRows(contattiColumns)
	for i := 0; i < 5; i++ {
		rows.AddRow(i+11, "Nome", "Cognome", nil, "nome@example.com")
	}
	mock.ExpectQuery(`SELECT \* FROM contatti ORDER BY nome DESC LIMIT \? OFFSET \?`).
		WithArgs(10, 10).
		WillReturnRows(rows)

	page, err := s.FindAllPaged(PageRequest{Number: 1, Size: 10, Sort: "nome"})
	assert.NoError(t, err)
	assert.Equal(t, 5, len(page.Content))
	assert.Equal(t, 1, page.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPagedDefaults verifies that an empty page request falls back to the
// default size and sort column.
func TestPagedDefaults(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contatti`).
		WillReturnRows(mock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM contatti ORDER BY cognome DESC LIMIT \? OFFSET \?`).
		WithArgs(DefaultPageSize, 0).
		WillReturnRows(mock.NewRows(contattiColumns))

	page, err := s.FindAllPaged(PageRequest{Sort: "id; DROP TABLE contatti"})
	assert.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Size)
	assert.Equal(t, 0, page.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByNomeLikePaged verifies that the fragment is wrapped in
// wildcards and applied to both the count and the select.
func TestFindByNomeLikePaged(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contatti WHERE LOWER\(nome\) LIKE LOWER\(\?\)`).
		WithArgs("%mar%").
		WillReturnRows(mock.NewRows([]string{"COUNT(*)"}).AddRow(2))
	rows := mock.NewRows(contattiColumns).
		AddRow(1, "Mario", "Rossi", "111", "mario@ex.com").
		AddRow(2, "Marina", "Verdi", "222", "marina@ex.com")
	mock.ExpectQuery(`SELECT \* FROM contatti WHERE LOWER\(nome\) LIKE LOWER\(\?\) ORDER BY cognome ASC LIMIT \? OFFSET \?`).
		WithArgs("%mar%", 10, 0).
		WillReturnRows(rows)

	page, err := s.FindByNomeLikePaged("mar", PageRequest{Size: 10, Sort: "cognome", Ascending: true})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 2, len(page.Content))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByNomeLike verifies the unpaged fragment search.
func TestFindByNomeLike(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	rows := mock.NewRows(contattiColumns).
		AddRow(1, "Mario", "Rossi", "111", "mario@ex.com").
		AddRow(2, "Marina", "Verdi", "222", "marina@ex.com")
	mock.ExpectQuery(`SELECT \* FROM contatti WHERE LOWER\(nome\) LIKE LOWER\(\?\)`).
		WithArgs("%mar%").
		WillReturnRows(rows)

	contatti, err := s.FindByNomeLike("mar")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(contatti))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByNomeAndCognome verifies the exact two-field lookup.
func TestFindByNomeAndCognome(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	rows := mock.NewRows(contattiColumns).
		AddRow(1, "Mario", "Rossi", "111", "mario@ex.com")
	mock.ExpectQuery(`SELECT \* FROM contatti WHERE nome=\? AND cognome=\?`).
		WithArgs("Mario", "Rossi").
		WillReturnRows(rows)

	contatti, err := s.FindByNomeAndCognome("Mario", "Rossi")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(contatti))
	assert.Equal(t, "Mario", contatti[0].Nome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Package service owns the business rules of the address book: search
// precedence, the per-id read cache, and the translation of missing rows
// into ErrNotFound outcomes.
package service

import (
	"errors"
	"strings"
	"sync"

	"gitlab.com/matteo.albano/rubrica-service/internal/dto"
	"gitlab.com/matteo.albano/rubrica-service/internal/logger"
	"gitlab.com/matteo.albano/rubrica-service/internal/mapper"
	"gitlab.com/matteo.albano/rubrica-service/internal/model"
	"gitlab.com/matteo.albano/rubrica-service/internal/store"
)

// ErrNotFound reports that the requested contact does not exist.
var ErrNotFound = store.ErrNotFound

// ErrIDAssigned reports an insert whose payload already carries an id.
var ErrIDAssigned = errors.New("un nuovo contatto non può avere un id")

// Contatti implements the business layer on top of a ContattoStore.
type Contatti struct {
	store store.ContattoStore
	log   *logger.Logger

	// cache memoizes successful by-id lookups. Entries are evicted on
	// update and delete so that reads never observe stale rows.
	mu    sync.RWMutex
	cache map[int64]model.Contatto
}

// New wires the service to its store.
func New(contattoStore store.ContattoStore, log *logger.Logger) *Contatti {
	return &Contatti{
		store: contattoStore,
		log:   log,
		cache: make(map[int64]model.Contatto),
	}
}

// FindAll returns every contact.
func (s *Contatti) FindAll() ([]model.Contatto, error) {
	return s.store.FindAll()
}

// FindAllPaged returns one page over all contacts.
func (s *Contatti) FindAllPaged(page store.PageRequest) (*store.Page, error) {
	return s.store.FindAllPaged(page)
}

// FindByID returns the contact with the given id, serving repeated lookups
// of the same id from the in-process cache.
func (s *Contatti) FindByID(id int64) (*model.Contatto, error) {
	s.mu.RLock()
	cached, hit := s.cache[id]
	s.mu.RUnlock()
	if hit {
		s.log.Debug("contatto servito dalla cache", "id", id)
		return &cached, nil
	}

	contatto, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[id] = *contatto
	s.mu.Unlock()
	return contatto, nil
}

// evict drops the cache entry of the given id, if any.
func (s *Contatti) evict(id int64) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// Insert stores a new contact and returns it with the assigned id. The
// incoming contact must not carry an id already.
func (s *Contatti) Insert(contatto model.Contatto) (model.Contatto, error) {
	if contatto.Id != 0 {
		return model.Contatto{}, ErrIDAssigned
	}
	saved, err := s.store.Save(contatto)
	if err != nil {
		return model.Contatto{}, err
	}
	s.log.Info("contatto creato", "id", saved.Id)
	return saved, nil
}

// Update overwrites the four mutable fields of an existing contact with
// the values of the request and returns the stored result. Returns
// ErrNotFound when the id does not exist.
func (s *Contatti) Update(id int64, request *dto.ContattoRequest) (model.Contatto, error) {
	existing, err := s.store.FindByID(id)
	if err != nil {
		return model.Contatto{}, err
	}
	updated := mapper.ApplyUpdate(*existing, request)
	saved, err := s.store.Save(updated)
	if err != nil {
		return model.Contatto{}, err
	}
	s.evict(id)
	s.log.Info("contatto aggiornato", "id", id)
	return saved, nil
}

// Delete removes the contact with the given id. Deleting an absent id
// succeeds; the operation is idempotent.
func (s *Contatti) Delete(id int64) error {
	if err := s.store.DeleteByID(id); err != nil {
		return err
	}
	s.evict(id)
	s.log.Info("contatto eliminato", "id", id)
	return nil
}

// SearchExact looks contacts up by exact first name and/or surname. With
// both criteria present both must match; with neither, the result is empty
// rather than the full listing.
func (s *Contatti) SearchExact(nome, cognome *string) ([]model.Contatto, error) {
	switch {
	case nome != nil && cognome != nil:
		return s.store.FindByNomeAndCognome(*nome, *cognome)
	case nome != nil:
		return s.store.FindByNome(*nome)
	case cognome != nil:
		return s.store.FindByCognome(*cognome)
	default:
		return []model.Contatto{}, nil
	}
}

// SearchLike returns the contacts whose first name contains the fragment,
// ignoring case.
func (s *Contatti) SearchLike(frammento string) ([]model.Contatto, error) {
	return s.store.FindByNomeLike(frammento)
}

// SearchPaged returns one page of contacts filtered by first name fragment
// if one is given, else by surname fragment if one is given, else
// unfiltered. Only one filter is ever active.
func (s *Contatti) SearchPaged(nome, cognome string, page store.PageRequest) (*store.Page, error) {
	switch {
	case strings.TrimSpace(nome) != "":
		return s.store.FindByNomeLikePaged(nome, page)
	case strings.TrimSpace(cognome) != "":
		return s.store.FindByCognomeLikePaged(cognome, page)
	default:
		return s.store.FindAllPaged(page)
	}
}

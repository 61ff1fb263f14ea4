// Package mapper converts between wire shapes and the Contatto entity.
package mapper

import (
	"gitlab.com/matteo.albano/rubrica-service/internal/dto"
	"gitlab.com/matteo.albano/rubrica-service/internal/model"
	"gitlab.com/matteo.albano/rubrica-service/internal/store"
)

// ToEntity builds a new Contatto from the request. The id stays unset; the
// database assigns it on insert. A nil request maps to a nil entity.
func ToEntity(request *dto.ContattoRequest) *model.Contatto {
	if request == nil {
		return nil
	}
	return &model.Contatto{
		Nome:     request.Nome,
		Cognome:  request.Cognome,
		Telefono: request.Telefono,
		Email:    request.Email,
	}
}

// ToResponse exposes a stored contact on the wire. A nil entity maps to a
// nil response.
func ToResponse(entity *model.Contatto) *dto.ContattoResponse {
	if entity == nil {
		return nil
	}
	return &dto.ContattoResponse{
		Id:       entity.Id,
		Nome:     entity.Nome,
		Cognome:  entity.Cognome,
		Telefono: entity.Telefono,
		Email:    entity.Email,
	}
}

// ToResponseList converts a slice of entities, preserving order. An empty
// input yields an empty, non-nil slice so that lists serialize as [].
func ToResponseList(entities []model.Contatto) []dto.ContattoResponse {
	responses := make([]dto.ContattoResponse, 0, len(entities))
	for i := range entities {
		responses = append(responses, *ToResponse(&entities[i]))
	}
	return responses
}

// ToPageResponse converts a store page into its wire envelope.
func ToPageResponse(page *store.Page) *dto.Page {
	return &dto.Page{
		Content:       ToResponseList(page.Content),
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Number:        page.Number,
		Size:          page.Size,
	}
}

// ApplyUpdate returns a copy of the entity with the four mutable fields
// taken from the request. The id of the original is preserved; the original
// itself is never mutated.
func ApplyUpdate(entity model.Contatto, request *dto.ContattoRequest) model.Contatto {
	entity.Nome = request.Nome
	entity.Cognome = request.Cognome
	entity.Telefono = request.Telefono
	entity.Email = request.Email
	return entity
}

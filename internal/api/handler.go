// Package api exposes the address book as a JSON REST API under
// /api/contatti.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/matteo.albano/rubrica-service/internal/dto"
	"gitlab.com/matteo.albano/rubrica-service/internal/logger"
	"gitlab.com/matteo.albano/rubrica-service/internal/mapper"
	"gitlab.com/matteo.albano/rubrica-service/internal/service"
	"gitlab.com/matteo.albano/rubrica-service/internal/store"
)

// BasePath is the URL prefix of all REST endpoints.
const BasePath = "/api/contatti"

// Handler holds the REST endpoints of the address book.
type Handler struct {
	service *service.Contatti
	log     *logger.Logger
}

// NewHandler wires the REST surface to the business layer.
func NewHandler(contatti *service.Contatti, log *logger.Logger) *Handler {
	return &Handler{service: contatti, log: log}
}

// NewEngine builds the gin engine. Request logging can be turned off by
// setting ginLogging to "off", which keeps test output readable.
func NewEngine(ginLogging string) *gin.Engine {
	if strings.EqualFold(ginLogging, "off") {
		router := gin.New()
		router.Use(gin.Recovery())
		return router
	}
	return gin.Default()
}

// Register attaches all REST endpoints to the router.
func (h *Handler) Register(router *gin.Engine) {
	group := router.Group(BasePath)
	group.GET("", h.findAll)
	group.POST("", h.insert)
	group.GET("/search", h.search)
	group.GET("/searchlike", h.searchLike)
	group.GET("/searchsort", h.searchSort)
	group.GET("/:id", h.findByID)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

// findAll responds with the list of all contacts as JSON. An empty address
// book yields an empty list, not an error.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/api/contatti"
func (h *Handler) findAll(c *gin.Context) {
	contatti, err := h.service.FindAll()
	if err != nil {
		h.log.Error("GET /api/contatti fallita", "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	h.log.Info("GET /api/contatti", "risultati", len(contatti))
	c.IndentedJSON(http.StatusOK, mapper.ToResponseList(contatti))
}

// insert creates the contact specified in the request's JSON and responds
// with the stored contact including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contatti --request "POST" --include --header "Content-Type: application/json" --data '{"nome": "Mario", "cognome": "Rossi", "telefono": "+39 06 555 1234", "email": "mario.rossi@example.com"}'
func (h *Handler) insert(c *gin.Context) {
	request, ok := bindAndValidate(c)
	if !ok {
		return
	}
	saved, err := h.service.Insert(*mapper.ToEntity(request))
	if err != nil {
		h.log.Error("POST /api/contatti fallita", "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusCreated, mapper.ToResponse(&saved))
}

// findByID locates the contact whose id matches the id parameter of the
// request URL and returns it, or answers 404.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/api/contatti/56"
func (h *Handler) findByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contatto, err := h.service.FindByID(id)
	if errors.Is(err, service.ErrNotFound) {
		h.log.Warn("GET /api/contatti/:id non trovato", "id", id)
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contatto non trovato"})
		return
	}
	if err != nil {
		h.log.Error("GET /api/contatti/:id fallita", "id", id, "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, mapper.ToResponse(contatto))
}

// update overwrites the contact whose id matches the id parameter of the
// request URL with the values of the JSON body, then responds with the new
// version of the contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contatti/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"nome": "Mario", "cognome": "Bianchi", "email": "mario.bianchi@example.com"}'
func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	request, ok := bindAndValidate(c)
	if !ok {
		return
	}
	saved, err := h.service.Update(id, request)
	if errors.Is(err, service.ErrNotFound) {
		h.log.Warn("PUT /api/contatti/:id non trovato", "id", id)
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contatto non trovato"})
		return
	}
	if err != nil {
		h.log.Error("PUT /api/contatti/:id fallita", "id", id, "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, mapper.ToResponse(&saved))
}

// delete removes the contact whose id matches the id parameter of the
// request URL. Deleting an id that does not exist also answers 204.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/contatti/56 --request "DELETE"
func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		h.log.Error("DELETE /api/contatti/:id fallita", "id", id, "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

// search responds with the contacts matching the 'nome' and/or 'cognome'
// URL parameters exactly. Without any parameter the result is an empty
// list, never the full address book.
//
// Example REST API calls:
//
//	> curl "http://localhost:8080/api/contatti/search?nome=Mario"
//	> curl "http://localhost:8080/api/contatti/search?nome=Mario&cognome=Rossi"
func (h *Handler) search(c *gin.Context) {
	var nome, cognome *string
	if value, given := c.GetQuery("nome"); given {
		nome = &value
	}
	if value, given := c.GetQuery("cognome"); given {
		cognome = &value
	}
	contatti, err := h.service.SearchExact(nome, cognome)
	if err != nil {
		h.log.Error("GET /api/contatti/search fallita", "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, mapper.ToResponseList(contatti))
}

// searchLike responds with the contacts whose first name contains the
// 'nome' URL parameter, ignoring case.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/api/contatti/searchlike?nome=mar"
func (h *Handler) searchLike(c *gin.Context) {
	nome, given := c.GetQuery("nome")
	if !given {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "parametro nome mancante"})
		return
	}
	contatti, err := h.service.SearchLike(nome)
	if err != nil {
		h.log.Error("GET /api/contatti/searchlike fallita", "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, mapper.ToResponseList(contatti))
}

// searchSort responds with one page of contacts. A non-blank 'nome'
// parameter filters by first name fragment; failing that, a non-blank
// 'cognome' filters by surname fragment; with neither the page covers the
// whole address book. 'page', 'size' and 'sort' control the pagination,
// with sort given as column or column,direction.
//
// Example REST API calls:
//
//	> curl "http://localhost:8080/api/contatti/searchsort?page=0&size=10"
//	> curl "http://localhost:8080/api/contatti/searchsort?cognome=ros&sort=nome,desc"
func (h *Handler) searchSort(c *gin.Context) {
	page, ok := parsePageRequest(c)
	if !ok {
		return
	}
	result, err := h.service.SearchPaged(c.Query("nome"), c.Query("cognome"), page)
	if err != nil {
		h.log.Error("GET /api/contatti/searchsort fallita", "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	h.log.Info("GET /api/contatti/searchsort",
		"pagine", result.TotalPages, "elementi", result.TotalElements)
	c.IndentedJSON(http.StatusOK, mapper.ToPageResponse(result))
}

// parseID reads the id path parameter. A non-numeric id answers 404
// without reaching out to the database.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "parametro id non valido"})
		return 0, false
	}
	return id, true
}

// bindAndValidate decodes the JSON body and checks the field rules,
// answering 400 on either failure.
func bindAndValidate(c *gin.Context) (*dto.ContattoRequest, bool) {
	var request dto.ContattoRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "JSON non valido"})
		return nil, false
	}
	if problems := request.Validate(); problems != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": problems})
		return nil, false
	}
	return &request, true
}

// parsePageRequest reads the page, size and sort URL parameters, answering
// 400 on non-numeric page or size. Unknown sort columns fall back to the
// default inside the store.
func parsePageRequest(c *gin.Context) (store.PageRequest, bool) {
	page := store.PageRequest{
		Size:      store.DefaultPageSize,
		Sort:      store.DefaultSort,
		Ascending: true,
	}
	if raw := c.Query("page"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "parametro page non valido"})
			return store.PageRequest{}, false
		}
		page.Number = number
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "parametro size non valido"})
			return store.PageRequest{}, false
		}
		page.Size = size
	}
	if raw := c.Query("sort"); raw != "" {
		column, direction, found := strings.Cut(raw, ",")
		page.Sort = column
		if found && strings.EqualFold(direction, "desc") {
			page.Ascending = false
		}
	}
	return page, true
}

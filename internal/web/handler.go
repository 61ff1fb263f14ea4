// Package web is the server-rendered HTML surface of the address book. It
// performs the same operations as the REST API but renders views, and
// reports failures through an inline error message instead of a status
// code.
package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/matteo.albano/rubrica-service/internal/dto"
	"gitlab.com/matteo.albano/rubrica-service/internal/logger"
	"gitlab.com/matteo.albano/rubrica-service/internal/mapper"
	"gitlab.com/matteo.albano/rubrica-service/internal/service"
)

// Handler holds the page endpoints.
type Handler struct {
	service *service.Contatti
	log     *logger.Logger
}

// NewHandler wires the page surface to the business layer.
func NewHandler(contatti *service.Contatti, log *logger.Logger) *Handler {
	return &Handler{service: contatti, log: log}
}

// Register loads the view templates and attaches the page endpoints to the
// router. HTML forms cannot send PUT or DELETE, so updates and deletions
// arrive as POSTs carrying a _method field.
func (h *Handler) Register(router *gin.Engine, templateGlob string) {
	router.LoadHTMLGlob(templateGlob)
	router.GET("/", h.index)
	router.GET("/contatti/:id", h.dettaglio)
	router.GET("/contatti/:id/edit", h.modifica)
	router.POST("/contatti", h.inserisci)
	router.POST("/contatti/:id", h.aggiornaOElimina)
}

// index renders the contact list with the creation form.
func (h *Handler) index(c *gin.Context) {
	contatti, err := h.service.FindAll()
	if err != nil {
		h.log.Error("caricamento lista contatti fallito", "err", err)
		c.HTML(http.StatusOK, "index.html", gin.H{
			"errorMessage": "Errore durante il caricamento dei contatti.",
		})
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"contatti": mapper.ToResponseList(contatti),
	})
}

// dettaglio renders a single contact, or the not-found view.
func (h *Handler) dettaglio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{
			"errorMessage": "Contatto non trovato",
		})
		return
	}
	contatto, err := h.service.FindByID(id)
	if errors.Is(err, service.ErrNotFound) {
		h.log.Warn("contatto non trovato", "id", id)
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{
			"errorMessage": "Contatto non trovato",
		})
		return
	}
	if err != nil {
		h.log.Error("caricamento contatto fallito", "id", id, "err", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"errorMessage": "Errore durante il caricamento del contatto.",
		})
		return
	}
	c.HTML(http.StatusOK, "contatto.html", gin.H{
		"contatto": mapper.ToResponse(contatto),
	})
}

// modifica renders the edit form of a contact, or the not-found view.
func (h *Handler) modifica(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{
			"errorMessage": "Contatto non trovato.",
		})
		return
	}
	contatto, err := h.service.FindByID(id)
	if errors.Is(err, service.ErrNotFound) {
		h.log.Warn("contatto non trovato per modifica", "id", id)
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{
			"errorMessage": "Contatto non trovato.",
		})
		return
	}
	if err != nil {
		h.log.Error("caricamento form di modifica fallito", "id", id, "err", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"errorMessage": "Errore durante il caricamento del form.",
		})
		return
	}
	c.HTML(http.StatusOK, "edit.html", gin.H{
		"contatto": mapper.ToResponse(contatto),
	})
}

// inserisci creates a contact from the submitted form and redirects to the
// list. Validation problems and failures render the list again with an
// inline message.
func (h *Handler) inserisci(c *gin.Context) {
	var form dto.ContattoRequest
	if err := c.ShouldBind(&form); err != nil {
		h.renderIndexWithError(c, "Errore durante l'inserimento del contatto.")
		return
	}
	form.Normalize()
	if problems := form.Validate(); problems != nil {
		h.log.Warn("form di inserimento non valido", "problemi", problems)
		h.renderIndexWithError(c, "Dati del contatto non validi.")
		return
	}
	saved, err := h.service.Insert(*mapper.ToEntity(&form))
	if err != nil {
		h.log.Error("inserimento contatto fallito", "err", err)
		h.renderIndexWithError(c, "Errore durante l'inserimento del contatto.")
		return
	}
	h.log.Info("contatto creato dal form", "id", saved.Id)
	c.Redirect(http.StatusSeeOther, "/")
}

// aggiornaOElimina dispatches a form POST on /contatti/:id by its _method
// field: "put" updates the contact, "delete" removes it. Both redirect to
// the list on success.
func (h *Handler) aggiornaOElimina(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{
			"errorMessage": "Contatto non trovato.",
		})
		return
	}
	switch c.PostForm("_method") {
	case "put":
		h.aggiorna(c, id)
	case "delete":
		h.elimina(c, id)
	default:
		h.renderIndexWithError(c, "Operazione non supportata.")
	}
}

func (h *Handler) aggiorna(c *gin.Context, id int64) {
	var form dto.ContattoRequest
	if err := c.ShouldBind(&form); err != nil {
		h.renderIndexWithError(c, "Errore durante l'aggiornamento del contatto.")
		return
	}
	form.Normalize()
	if problems := form.Validate(); problems != nil {
		h.log.Warn("form di modifica non valido", "id", id, "problemi", problems)
		h.renderIndexWithError(c, "Dati del contatto non validi.")
		return
	}
	if _, err := h.service.Update(id, &form); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.HTML(http.StatusNotFound, "not-found.html", gin.H{
				"errorMessage": "Contatto non trovato.",
			})
			return
		}
		h.log.Error("aggiornamento contatto fallito", "id", id, "err", err)
		h.renderIndexWithError(c, "Errore durante l'aggiornamento del contatto.")
		return
	}
	h.log.Info("contatto aggiornato dal form", "id", id)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) elimina(c *gin.Context, id int64) {
	if err := h.service.Delete(id); err != nil {
		h.log.Error("eliminazione contatto fallita", "id", id, "err", err)
		h.renderIndexWithError(c, "Errore durante l'eliminazione del contatto.")
		return
	}
	h.log.Info("contatto eliminato dal form", "id", id)
	c.Redirect(http.StatusSeeOther, "/")
}

// renderIndexWithError renders the list view with an inline message,
// keeping whatever contacts can still be loaded on the page.
func (h *Handler) renderIndexWithError(c *gin.Context, message string) {
	contatti, err := h.service.FindAll()
	data := gin.H{"errorMessage": message}
	if err == nil {
		data["contatti"] = mapper.ToResponseList(contatti)
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

package collections

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/mytheresa/catalog-service/app/api"
	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/validation"
)

// maxFormBytes caps a collection form body. Collections carry a title only,
// so the whole body stays in memory.
const maxFormBytes = 64 << 10

type CollectionResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type ProductSummary struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Price        int64  `json:"price"`
	Description  string `json:"description"`
	ImagePath    string `json:"image_path"`
	Menu         string `json:"menu"`
	CollectionID uint   `json:"collection_id"`
}

type CollectionDetailResponse struct {
	ID       uint             `json:"id"`
	Title    string           `json:"title"`
	Products []ProductSummary `json:"products"`
}

type CollectionProvider interface {
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	GetPage(ctx context.Context, offset, limit int) ([]models.Collection, int64, error)
	Create(ctx context.Context, collection *models.Collection) error
	Update(ctx context.Context, id uint, changes models.CollectionChanges) error
	Delete(ctx context.Context, id uint) error
	validation.CollectionLookup
}

type CollectionHandler struct {
	repo CollectionProvider
}

func NewCollectionHandler(r CollectionProvider) *CollectionHandler {
	return &CollectionHandler{repo: r}
}

// HandleGet serves GET /get-collection/{id}.
func (h *CollectionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, verr := api.PathID(r)
	if verr != nil {
		api.WriteValidationError(w, r, verr)
		return
	}

	collection, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrCollectionNotFound) {
			api.WriteError(w, r, http.StatusNotFound, "collection not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Uint("collection_id", id).Msg("failed to fetch collection")
		api.WriteError(w, r, http.StatusInternalServerError, "failed to fetch collection")
		return
	}

	products := make([]ProductSummary, len(collection.Products))
	for i, p := range collection.Products {
		products[i] = ProductSummary{
			ID:           p.ID,
			Title:        p.Title,
			Price:        p.Price,
			Description:  p.Description,
			ImagePath:    p.ImagePath,
			Menu:         string(p.Menu),
			CollectionID: p.CollectionID,
		}
	}

	api.WriteJSON(w, r, http.StatusOK, CollectionDetailResponse{
		ID:       collection.ID,
		Title:    collection.Title,
		Products: products,
	})
}

// HandleGetAll serves GET /get-all-collections.
func (h *CollectionHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	page, err := validation.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	if err != nil {
		h.writeFailure(w, r, err, "failed to fetch collections")
		return
	}

	collections, total, err := h.repo.GetPage(r.Context(), page.Offset(), page.PerPage)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to fetch collections")
		api.WriteError(w, r, http.StatusInternalServerError, "failed to fetch collections")
		return
	}

	items := make([]CollectionResponse, len(collections))
	for i, c := range collections {
		items[i] = CollectionResponse{
			ID:    c.ID,
			Title: c.Title,
		}
	}

	api.WriteJSON(w, r, http.StatusOK, api.NewPage(page, total, items))
}

// HandleCreate serves POST /create-collection.
func (h *CollectionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !api.ParseLimitedForm(w, r, maxFormBytes, maxFormBytes) {
		return
	}

	input := validation.CollectionInput{
		Title: r.PostFormValue("title"),
	}

	collection, err := validation.CreateCollection(r.Context(), input, h.repo)
	if err != nil {
		h.writeFailure(w, r, err, "failed to create collection")
		return
	}

	if err := h.repo.Create(r.Context(), collection); err != nil {
		h.writeFailure(w, r, err, "failed to create collection")
		return
	}

	api.WriteMessage(w, r, http.StatusCreated,
		fmt.Sprintf("new collection by the name of %s has been created successfully", collection.Title))
}

// HandleUpdate serves PATCH /update-collection/{id}. Only supplied fields change.
func (h *CollectionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, verr := api.PathID(r)
	if verr != nil {
		api.WriteValidationError(w, r, verr)
		return
	}

	exists, err := h.repo.CollectionExists(r.Context(), id)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Uint("collection_id", id).Msg("failed to fetch collection")
		api.WriteError(w, r, http.StatusInternalServerError, "failed to update collection")
		return
	}
	if !exists {
		api.WriteError(w, r, http.StatusNotFound, "collection not found")
		return
	}

	if !api.ParseLimitedForm(w, r, maxFormBytes, maxFormBytes) {
		return
	}

	input := validation.CollectionUpdateInput{
		Title: r.PostFormValue("title"),
	}

	changes, err := validation.UpdateCollection(r.Context(), id, input, h.repo)
	if err != nil {
		h.writeFailure(w, r, err, "failed to update collection")
		return
	}

	if !changes.IsEmpty() {
		if err := h.repo.Update(r.Context(), id, changes); err != nil {
			h.writeFailure(w, r, err, "failed to update collection")
			return
		}
	}

	api.WriteMessage(w, r, http.StatusAccepted,
		fmt.Sprintf("collection %d has been updated successfully", id))
}

// HandleDelete serves DELETE /delete-collection/{id}. Products of the
// collection are removed with it.
func (h *CollectionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, verr := api.PathID(r)
	if verr != nil {
		api.WriteValidationError(w, r, verr)
		return
	}

	collection, err := h.repo.GetByID(r.Context(), id)
	if err == nil {
		err = h.repo.Delete(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, models.ErrCollectionNotFound) {
			api.WriteError(w, r, http.StatusNotFound, "collection not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Uint("collection_id", id).Msg("failed to delete collection")
		api.WriteError(w, r, http.StatusInternalServerError, "failed to delete collection")
		return
	}

	api.WriteMessage(w, r, http.StatusAccepted,
		fmt.Sprintf("collection %s has been deleted successfully", collection.Title))
}

// writeFailure renders a validation failure as 400 and anything else the
// store reports as 404 or 500.
func (h *CollectionHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, message string) {
	if verr, ok := api.AsValidationError(err); ok {
		api.WriteValidationError(w, r, verr)
		return
	}

	switch {
	case errors.Is(err, models.ErrTitleTaken):
		api.WriteValidationError(w, r, &validation.Error{
			Field:   "title",
			Message: "a collection with this title already exists",
			Input:   r.PostFormValue("title"),
		})
	case errors.Is(err, models.ErrCollectionNotFound):
		api.WriteError(w, r, http.StatusNotFound, "collection not found")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(message)
		api.WriteError(w, r, http.StatusInternalServerError, message)
	}
}

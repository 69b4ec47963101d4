package products

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/mytheresa/catalog-service/app/api"
	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/storage"
	"github.com/mytheresa/catalog-service/validation"
)

// maxFormMemory is how much of a multipart body is kept in memory; the
// rest of an upload spills to temporary files.
const maxFormMemory = 8 << 20

const imageField = "product_image"

type ProductResponse struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Price           int64  `json:"price"`
	Description     string `json:"description"`
	ImagePath       string `json:"image_path"`
	Menu            string `json:"menu"`
	CollectionID    uint   `json:"collection_id"`
	CollectionTitle string `json:"collection_title"`
}

type ProductProvider interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetPage(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uint, changes models.ProductChanges) error
	validation.ProductLookup
}

type ImageStore interface {
	Save(fh *multipart.FileHeader) (storage.Image, error)
	Remove(publicPath string) error
}

type ProductHandler struct {
	repo        ProductProvider
	collections validation.CollectionLookup
	images      ImageStore
	maxUpload   int64
}

// NewProductHandler wires the handler. maxUpload caps the request body in bytes.
func NewProductHandler(r ProductProvider, collections validation.CollectionLookup, images ImageStore, maxUpload int64) *ProductHandler {
	return &ProductHandler{
		repo:        r,
		collections: collections,
		images:      images,
		maxUpload:   maxUpload,
	}
}

func toResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Title:           p.Title,
		Price:           p.Price,
		Description:     p.Description,
		ImagePath:       p.ImagePath,
		Menu:            string(p.Menu),
		CollectionID:    p.CollectionID,
		CollectionTitle: p.Collection.Title,
	}
}

// HandleGet serves GET /get-product/{id}.
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, verr := api.PathID(r)
	if verr != nil {
		api.WriteValidationError(w, r, verr)
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.WriteError(w, r, http.StatusNotFound, "product not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Uint("product_id", id).Msg("failed to retrieve product")
		api.WriteError(w, r, http.StatusInternalServerError, "failed to retrieve product")
		return
	}

	api.WriteJSON(w, r, http.StatusOK, toResponse(*product))
}

// HandleGetAll serves GET /get-all-products, optionally filtered by
// collection_id and menu.
func (h *ProductHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := validation.ParsePage(query.Get("page"), query.Get("per_page"))
	if err != nil {
		h.writeFailure(w, r, err, "failed to fetch products")
		return
	}

	filters, err := validation.ParseProductFilters(query.Get("collection_id"), query.Get("menu"))
	if err != nil {
		h.writeFailure(w, r, err, "failed to fetch products")
		return
	}

	res, total, err := h.repo.GetPage(r.Context(), page.Offset(), page.PerPage, filters)
	if err != nil {
		h.writeFailure(w, r, err, "failed to fetch products")
		return
	}

	items := make([]ProductResponse, len(res))
	for i, p := range res {
		items[i] = toResponse(p)
	}

	api.WriteJSON(w, r, http.StatusOK, api.NewPage(page, total, items))
}

// HandleCreate serves POST /create-product.
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	upload := formFile(r, imageField)

	input := validation.ProductInput{
		Title:        r.PostFormValue("title"),
		Price:        r.PostFormValue("price"),
		Description:  r.PostFormValue("description"),
		Menu:         r.PostFormValue("menu"),
		CollectionID: r.PostFormValue("collection_id"),
	}
	if upload != nil {
		input.ImageName = upload.Filename
	}

	product, err := validation.CreateProduct(r.Context(), input, h.repo, h.collections)
	if err != nil {
		h.writeFailure(w, r, err, "failed to create product")
		return
	}

	img, err := h.images.Save(upload)
	if err != nil {
		h.writeFailure(w, r, err, "failed to store product image")
		return
	}
	product.ImagePath = img.Path

	if err := h.repo.Create(r.Context(), product); err != nil {
		h.discard(r, img)
		h.writeFailure(w, r, err, "failed to create product")
		return
	}

	api.WriteMessage(w, r, http.StatusCreated,
		fmt.Sprintf("product %s has been created successfully", product.Title))
}

// HandleUpdate serves PATCH /update-product/{id}. Only supplied fields
// change; a new image replaces the stored path.
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, verr := api.PathID(r)
	if verr != nil {
		api.WriteValidationError(w, r, verr)
		return
	}

	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		h.writeFailure(w, r, err, "failed to update product")
		return
	}

	if !h.parseForm(w, r) {
		return
	}

	input := validation.ProductUpdateInput{
		Title:        r.PostFormValue("title"),
		Price:        r.PostFormValue("price"),
		Description:  r.PostFormValue("description"),
		Menu:         r.PostFormValue("menu"),
		CollectionID: r.PostFormValue("collection_id"),
	}

	changes, err := validation.UpdateProduct(r.Context(), id, input, h.repo, h.collections)
	if err != nil {
		h.writeFailure(w, r, err, "failed to update product")
		return
	}

	var img storage.Image
	if upload := formFile(r, imageField); upload != nil {
		img, err = h.images.Save(upload)
		if err != nil {
			h.writeFailure(w, r, err, "failed to store product image")
			return
		}
		changes.ImagePath = img.Path
	}

	if !changes.IsEmpty() {
		if err := h.repo.Update(r.Context(), id, changes); err != nil {
			h.discard(r, img)
			h.writeFailure(w, r, err, "failed to update product")
			return
		}
	}

	api.WriteMessage(w, r, http.StatusAccepted,
		fmt.Sprintf("product %d has been updated successfully", id))
}

func (h *ProductHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	return api.ParseLimitedForm(w, r, h.maxUpload, maxFormMemory)
}

// discard removes an image written for a store write that then failed.
// Files that existed before the upload are left alone.
func (h *ProductHandler) discard(r *http.Request, img storage.Image) {
	if !img.Created {
		return
	}
	if err := h.images.Remove(img.Path); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("image_path", img.Path).Msg("failed to remove orphaned image")
	}
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// writeFailure renders a validation failure as 400 and anything else the
// store reports as 404 or 500.
func (h *ProductHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, message string) {
	if verr, ok := api.AsValidationError(err); ok {
		api.WriteValidationError(w, r, verr)
		return
	}

	switch {
	case errors.Is(err, models.ErrProductNotFound):
		api.WriteError(w, r, http.StatusNotFound, "product not found")
	case errors.Is(err, models.ErrTitleTaken):
		api.WriteValidationError(w, r, &validation.Error{
			Field:   "title",
			Message: "a product with this title already exists",
			Input:   r.PostFormValue("title"),
		})
	case errors.Is(err, models.ErrCollectionMissing):
		api.WriteValidationError(w, r, &validation.Error{
			Field:   "collection_id",
			Message: "collection does not exist",
			Input:   r.PostFormValue("collection_id"),
		})
	case errors.Is(err, storage.ErrInvalidFilename):
		api.WriteValidationError(w, r, &validation.Error{
			Field:   imageField,
			Message: "must have a valid filename",
			Input:   formFileName(r),
		})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(message)
		api.WriteError(w, r, http.StatusInternalServerError, message)
	}
}

func formFileName(r *http.Request) string {
	if fh := formFile(r, imageField); fh != nil {
		return fh.Filename
	}
	return ""
}

package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	categorysvc "github.com/senjaya/lokapasar-backend/internal/categories"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

// CategoryList serves the public navigation tree, flat and ordered.
func CategoryList(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categories, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]categoryResponse, 0, len(categories))
		for i := range categories {
			out = append(out, newCategoryResponse(&categories[i]))
		}
		responses.WriteSuccess(w, map[string]any{"categories": out})
	}
}

// AdminCreateCategory adds a navigation entry.
func AdminCreateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(category))
	}
}

// AdminUpdateCategory edits a navigation entry.
func AdminUpdateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := pathUUID(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), categoryID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCategoryResponse(category))
	}
}

// AdminDeleteCategory removes a navigation entry.
func AdminDeleteCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := pathUUID(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type categoryRequest struct {
	Name      string     `json:"name" validate:"required"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	IconURL   *string    `json:"icon_url,omitempty"`
	SortOrder int        `json:"sort_order"`
}

func (p categoryRequest) toInput() categorysvc.CategoryInput {
	return categorysvc.CategoryInput{
		Name:      p.Name,
		ParentID:  p.ParentID,
		IconURL:   p.IconURL,
		SortOrder: p.SortOrder,
	}
}

type categoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	IconURL   *string    `json:"icon_url,omitempty"`
	SortOrder int        `json:"sort_order"`
}

func newCategoryResponse(category *models.Category) categoryResponse {
	if category == nil {
		return categoryResponse{}
	}
	return categoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Slug:      category.Slug,
		ParentID:  category.ParentID,
		IconURL:   category.IconURL,
		SortOrder: category.SortOrder,
	}
}

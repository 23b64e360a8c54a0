package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	bannersvc "github.com/senjaya/lokapasar-backend/internal/banners"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

// BannerList serves the banners currently live on the landing page.
func BannerList(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}

		banners, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBannerListResponse(banners))
	}
}

// AdminBannerList serves every banner, live or not.
func AdminBannerList(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}

		banners, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBannerListResponse(banners))
	}
}

// AdminCreateBanner publishes a new banner.
func AdminCreateBanner(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}

		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newBannerResponse(banner))
	}
}

// AdminUpdateBanner edits an existing banner.
func AdminUpdateBanner(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}

		bannerID, err := pathUUID(r, "bannerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.Update(r.Context(), bannerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBannerResponse(banner))
	}
}

// AdminDeleteBanner removes a banner.
func AdminDeleteBanner(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}

		bannerID, err := pathUUID(r, "bannerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type bannerRequest struct {
	Title     string     `json:"title" validate:"required"`
	ImageURL  string     `json:"image_url" validate:"required"`
	LinkURL   *string    `json:"link_url,omitempty"`
	IsActive  bool       `json:"is_active"`
	SortOrder int        `json:"sort_order"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

func (p bannerRequest) toInput() bannersvc.BannerInput {
	return bannersvc.BannerInput{
		Title:     p.Title,
		ImageURL:  p.ImageURL,
		LinkURL:   p.LinkURL,
		IsActive:  p.IsActive,
		SortOrder: p.SortOrder,
		StartsAt:  p.StartsAt,
		EndsAt:    p.EndsAt,
	}
}

type bannerResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"image_url"`
	LinkURL   *string    `json:"link_url,omitempty"`
	IsActive  bool       `json:"is_active"`
	SortOrder int        `json:"sort_order"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

func newBannerResponse(banner *models.Banner) bannerResponse {
	if banner == nil {
		return bannerResponse{}
	}
	return bannerResponse{
		ID:        banner.ID,
		Title:     banner.Title,
		ImageURL:  banner.ImageURL,
		LinkURL:   banner.LinkURL,
		IsActive:  banner.IsActive,
		SortOrder: banner.SortOrder,
		StartsAt:  banner.StartsAt,
		EndsAt:    banner.EndsAt,
	}
}

func newBannerListResponse(banners []models.Banner) map[string]any {
	out := make([]bannerResponse, 0, len(banners))
	for i := range banners {
		out = append(out, newBannerResponse(&banners[i]))
	}
	return map[string]any{"banners": out}
}

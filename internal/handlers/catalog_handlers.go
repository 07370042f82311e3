package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/01moynul/inkframe-golang/internal/checkout"
	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Public catalog ---
//

// catalogFilter reads ?category= and ?featured= from the query string.
func catalogFilter(c *gin.Context) store.CatalogFilter {
	f := store.CatalogFilter{Category: c.Query("category")}
	if raw := c.Query("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			f.Featured = &featured
		}
	}
	return f
}

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.Store.ActiveProducts(c.Request.Context(), catalogFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /api/products/:slug
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.Store.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handlers) ListServices(c *gin.Context) {
	services, err := h.Store.ActiveServices(c.Request.Context(), catalogFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *Handlers) ListPortfolio(c *gin.Context) {
	items, err := h.Store.PortfolioItems(c.Request.Context(), catalogFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) ListTestimonials(c *gin.Context) {
	items, err := h.Store.ActiveTestimonials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListPromotions only returns promotions running right now.
func (h *Handlers) ListPromotions(c *gin.Context) {
	items, err := h.Store.RunningPromotions(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) ListTeam(c *gin.Context) {
	items, err := h.Store.ActiveTeam(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListPaymentMethods handles GET /api/payment-methods. Without configured
// settings the built-in methods are listed so checkout stays usable.
func (h *Handlers) ListPaymentMethods(c *gin.Context) {
	settings, err := h.Store.ActivePaymentSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(settings) == 0 {
		for i, method := range checkout.DefaultPaymentMethods {
			settings = append(settings, models.PaymentSetting{
				Method:      method,
				DisplayName: method,
				IsActive:    true,
				SortOrder:   i,
			})
		}
	}
	c.JSON(http.StatusOK, settings)
}

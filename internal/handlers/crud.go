package handlers

import (
	"net/http"

	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// preparer normalises a record before it is written (slugs, default status).
type preparer interface {
	Prepare()
}

type crud[T any, P interface {
	*T
	store.Record
}] struct {
	res          *store.Resource[T, P]
	filterStatus bool
}

// RegisterCRUD mounts list/get/create/update/delete for a resource under g.
// Updates are partial: the body is decoded over the stored row and the
// merged record is validated as a whole.
func RegisterCRUD[T any, P interface {
	*T
	store.Record
}](g *gin.RouterGroup, res *store.Resource[T, P]) {
	registerCRUD(g, &crud[T, P]{res: res})
}

// RegisterStatusCRUD is RegisterCRUD with a ?status= filter on the listing.
func RegisterStatusCRUD[T any, P interface {
	*T
	store.Record
}](g *gin.RouterGroup, res *store.Resource[T, P]) {
	registerCRUD(g, &crud[T, P]{res: res, filterStatus: true})
}

func registerCRUD[T any, P interface {
	*T
	store.Record
}](g *gin.RouterGroup, r *crud[T, P]) {
	g.GET("", r.list)
	g.GET("/:id", r.get)
	g.POST("", r.create)
	g.PUT("/:id", r.update)
	g.DELETE("/:id", r.delete)
}

func (r *crud[T, P]) list(c *gin.Context) {
	var (
		items []T
		err   error
	)
	if st := c.Query("status"); r.filterStatus && st != "" {
		items, err = r.res.ListWhere(c.Request.Context(), "status = ?", []any{st})
	} else {
		items, err = r.res.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *crud[T, P]) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := r.res.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *crud[T, P]) create(c *gin.Context) {
	item := P(new(T))
	if !bindJSON(c, item) {
		return
	}
	if p, ok := any(item).(preparer); ok {
		p.Prepare()
	}
	if err := r.res.Create(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (r *crud[T, P]) update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// 1. Load the current row
	item, err := r.res.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// 2. Overlay the request body
	if !bindJSON(c, item) {
		return
	}
	if p, ok := any(item).(preparer); ok {
		p.Prepare()
	}

	// 3. Write and reload
	if err := r.res.Update(c.Request.Context(), id, item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *crud[T, P]) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := r.res.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loanflow/internal/service"
)

type CustomerHandler struct {
	Registry *service.RegistryService
}

func (h *CustomerHandler) Register(r *gin.Engine) {
	group := r.Group("/api/customers")
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.GET("/:id/credit", h.credit)
	group.GET("/:id/offer", h.offer)
}

func (h *CustomerHandler) list(c *gin.Context) {
	customers, err := h.Registry.ListCustomers(c.Request.Context())
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, customers, map[string]any{"count": len(customers)})
}

func (h *CustomerHandler) get(c *gin.Context) {
	cust, err := h.Registry.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		svcError(c, err)
		return
	}
	if cust == nil {
		Error(c, http.StatusNotFound, "customer not found", nil)
		return
	}
	Ok(c, cust, nil)
}

func (h *CustomerHandler) credit(c *gin.Context) {
	credit, err := h.Registry.Credit(c.Request.Context(), c.Param("id"))
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, credit, nil)
}

func (h *CustomerHandler) offer(c *gin.Context) {
	offer, err := h.Registry.LatestOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		svcError(c, err)
		return
	}
	Ok(c, offer, nil)
}

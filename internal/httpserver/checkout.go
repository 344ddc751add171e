package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
)

// customerID returns the owner id only for signed-in customers. Guest
// owners get the empty id, which the order operations reject.
func customerID(c *gin.Context) string {
	owner := ownerFromContext(c)
	if owner.Kind != domain.OwnerCustomer {
		return ""
	}
	return owner.ID
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutsvc.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid_body", "request body must be valid JSON"))
		return
	}
	res, err := h.deps.Checkout.PlaceOrder(c.Request.Context(), customerID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type orderListResponse struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.Checkout.ListOrders(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, orderListResponse{Orders: orders, Total: len(orders)})
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Checkout.GetOrder(c.Request.Context(), customerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type confirmPaymentRequest struct {
	Reference string `json:"reference"`
}

func (h *handlers) confirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid_body", "request body must be valid JSON"))
		return
	}
	order, err := h.deps.Checkout.ConfirmPayment(c.Request.Context(), customerID(c), c.Param("id"), req.Reference)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

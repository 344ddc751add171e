package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/cartmerge"
	customersvc "storefront/internal/service/customer"
)

type anonymousSessionResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int    `json:"expiresIn"`
}

// anonymousSession issues a guest token so a visitor can carry a cart
// before signing in.
func (h *handlers) anonymousSession(c *gin.Context) {
	token, _, err := h.deps.Auth.IssueAnonymous()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, anonymousSessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.deps.Auth.AccessTTL().Seconds()),
	})
}

type signupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	AnonymousToken string `json:"anonymousToken"`
}

type loginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	AnonymousToken string `json:"anonymousToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	*customersvc.Session
	CartMerge *cartmerge.Result `json:"cartMerge,omitempty"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid_body", "request body must be valid JSON"))
		return
	}
	sess, err := h.deps.Customers.Signup(c.Request.Context(), customersvc.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	merge := h.mergeGuestCart(c, req.AnonymousToken, sess.Customer.ID)
	c.JSON(http.StatusCreated, sessionResponse{Session: sess, CartMerge: merge})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid_body", "request body must be valid JSON"))
		return
	}
	sess, err := h.deps.Customers.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	merge := h.mergeGuestCart(c, req.AnonymousToken, sess.Customer.ID)
	c.JSON(http.StatusOK, sessionResponse{Session: sess, CartMerge: merge})
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, errorBody("invalid_body", "refreshToken is required"))
		return
	}
	sess, err := h.deps.Customers.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

// mergeGuestCart folds the guest cart named by anonymousToken into the
// customer's cart. Merge problems never fail the sign-in itself.
func (h *handlers) mergeGuestCart(c *gin.Context, anonymousToken, customerID string) *cartmerge.Result {
	if anonymousToken == "" {
		return nil
	}
	owner, err := h.deps.Auth.Parse(anonymousToken)
	if err != nil || owner.Kind != domain.OwnerGuest {
		h.logger.Warn("ignoring invalid anonymous token on sign-in", zap.Error(err))
		return nil
	}
	res, err := h.deps.Merge.Merge(c.Request.Context(), owner.ID, customerID)
	if err != nil {
		h.logger.Error("guest cart merge failed",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil
	}
	return &res
}

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"admin-dashboard/internal/audit"
	"admin-dashboard/internal/gateway"
	"admin-dashboard/internal/guard"
	"admin-dashboard/internal/models"
	"admin-dashboard/internal/session"
	"admin-dashboard/internal/store"
	"admin-dashboard/internal/util"
	"admin-dashboard/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auditor records admin mutations. *audit.Log satisfies it.
type Auditor interface {
	Record(ctx context.Context, actor, action, resource, resourceID string)
}

// Handler contains HTTP handlers
type Handler struct {
	session  *session.Store
	orders   *store.Orders
	products *store.Products
	auditor  Auditor
}

// NewHandler creates a new HTTP handler. auditor may be nil.
func NewHandler(sess *session.Store, orders *store.Orders, products *store.Products, auditor Auditor) *Handler {
	return &Handler{
		session:  sess,
		orders:   orders,
		products: products,
		auditor:  auditor,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/session/login", h.login)
		v1.POST("/session/signup", h.signup)
		v1.DELETE("/session", h.logout)
		v1.GET("/session", h.currentSession)

		admin := v1.Group("/", h.requireAdmin())
		{
			admin.GET("/orders", h.listOrders)
			admin.GET("/orders/search", h.searchOrders)
			admin.GET("/orders/status/:status", h.ordersByStatus)
			admin.GET("/orders/sales", h.sales)
			admin.PUT("/orders/:id", h.editOrder)
			admin.DELETE("/orders/:id", h.deleteOrder)

			admin.GET("/products", h.listProducts)
			admin.POST("/products", h.createProduct)
			admin.PUT("/products/:id", h.editProduct)
			admin.DELETE("/products/:id", h.deleteProduct)

			admin.GET("/categories", h.categories)
		}
	}
}

// requireAdmin gates the admin views on the current session state.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := h.session.Snapshot()
		if !guard.CanAccess(sess, true) {
			status := http.StatusForbidden
			if !sess.IsAuthenticated {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.upstreamError(c, err)
		return
	}

	sess := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

func (h *Handler) signup(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.session.Signup(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

func (h *Handler) logout(c *gin.Context) {
	h.session.Logout()
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) currentSession(c *gin.Context) {
	sess := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": sess.IsAuthenticated,
		"user":            sess.User,
	})
}

// orderView is an order plus its render-time display timestamp.
type orderView struct {
	models.Order
	CreatedAtDisplay string `json:"createdAtDisplay"`
}

func (h *Handler) respondOrders(c *gin.Context) {
	snap := h.orders.Snapshot()
	sorted := view.SortByCreatedAtDesc(snap.Orders)
	views := make([]orderView, len(sorted))
	for i, o := range sorted {
		views[i] = orderView{Order: o, CreatedAtDisplay: view.FormatKarachi(o.CreatedAt)}
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": views,
		"state":  snap.State.String(),
		"error":  snap.Err,
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	if err := h.orders.FetchAll(c.Request.Context()); err != nil {
		h.upstreamError(c, err)
		return
	}
	h.respondOrders(c)
}

func (h *Handler) searchOrders(c *gin.Context) {
	if err := h.orders.Search(c.Request.Context(), c.Query("query")); err != nil {
		h.upstreamError(c, err)
		return
	}
	h.respondOrders(c)
}

func (h *Handler) ordersByStatus(c *gin.Context) {
	status := c.Param("status")
	if !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}
	if err := h.orders.FilterByStatus(c.Request.Context(), status); err != nil {
		h.upstreamError(c, err)
		return
	}
	h.respondOrders(c)
}

func (h *Handler) sales(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	summary, err := h.orders.Sales(c.Request.Context(), status, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) editOrder(c *gin.Context) {
	orderID := c.Param("id")

	var patch models.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	if err := h.orders.Edit(c.Request.Context(), orderID, patch); err != nil {
		h.upstreamError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionEdit, audit.ResourceOrder, orderID)
	h.respondOrders(c)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	orderID := c.Param("id")
	if err := h.orders.Delete(c.Request.Context(), orderID); err != nil {
		h.upstreamError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionDelete, audit.ResourceOrder, orderID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	category := c.Query("category")
	if category != "" && !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	q := store.Query{Page: page, Search: c.Query("search"), Category: category}
	if err := h.products.Refresh(c.Request.Context(), q); err != nil {
		h.upstreamError(c, err)
		return
	}

	snap := h.products.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"products":   snap.Products,
		"totalPages": snap.TotalPages,
		"page":       snap.Query.Page,
		"state":      snap.State.String(),
		"error":      snap.Err,
	})
}

func (h *Handler) createProduct(c *gin.Context) {
	var req struct {
		models.Product
		Images []struct {
			Name    string `json:"name"`
			Content []byte `json:"content"`
		} `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	uploads := make([]gateway.Upload, len(req.Images))
	for i, img := range req.Images {
		uploads[i] = gateway.Upload{Name: img.Name, Content: img.Content}
	}

	created, err := h.products.Create(c.Request.Context(), req.Product, uploads)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionCreate, audit.ResourceProduct, created.ID)
	c.JSON(http.StatusCreated, gin.H{"product": created})
}

func (h *Handler) editProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	product.ID = c.Param("id")

	if err := h.products.Edit(c.Request.Context(), product); err != nil {
		h.upstreamError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionEdit, audit.ResourceProduct, product.ID)
	snap := h.products.Snapshot()
	c.JSON(http.StatusOK, gin.H{"products": snap.Products, "totalPages": snap.TotalPages})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	productID := c.Param("id")
	if err := h.products.Delete(c.Request.Context(), productID); err != nil {
		h.upstreamError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionDelete, audit.ResourceProduct, productID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.Categories})
}

func (h *Handler) recordAudit(c *gin.Context, action, resource, resourceID string) {
	if h.auditor == nil {
		return
	}
	actor := "unknown"
	if sess := h.session.Snapshot(); sess.User != nil {
		actor = sess.User.Username
	}
	h.auditor.Record(c.Request.Context(), actor, action, resource, resourceID)
}

// upstreamError translates the gateway error taxonomy into a dashboard
// response. Validation messages pass through verbatim.
func (h *Handler) upstreamError(c *gin.Context, err error) {
	kind, ok := gateway.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch kind {
	case gateway.KindAuth:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case gateway.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

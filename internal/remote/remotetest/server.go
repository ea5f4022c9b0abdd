// Package remotetest runs an in-memory order-service for tests and local development.
package remotetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/remote"
)

// Server is a fake order-service. Carts are keyed by bearer token.
type Server struct {
	mu          sync.Mutex
	carts       map[string][]remote.LinePayload
	idempotency map[string]remote.LinePayload
	products    []remote.ProductPayload
	orders      []remote.OrderPayload
	failures    map[string][]int
	calls       map[string]int
	now         func() time.Time

	http *httptest.Server
}

// NewServer starts the fake on a loopback listener. Close it when done.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		carts:       map[string][]remote.LinePayload{},
		idempotency: map[string]remote.LinePayload{},
		failures:    map[string][]int{},
		calls:       map[string]int{},
		now:         time.Now,
	}

	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware("order-service-fake"), s.countCalls(), s.injectFailures())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/api/products", s.listProducts)

	api := r.Group("/api", s.requireToken())
	api.GET("/cart", s.listCart)
	api.POST("/cart", s.createLine)
	api.DELETE("/cart", s.clearCart)
	api.PUT("/cart/:id", s.updateLine)
	api.DELETE("/cart/:id", s.deleteLine)
	api.POST("/orders", s.createOrder)

	s.http = httptest.NewServer(r)
	return s
}

func (s *Server) URL() string {
	return s.http.URL
}

func (s *Server) Close() {
	s.http.Close()
}

// FailNext makes the next call to route ("POST /api/cart", "PUT /api/cart/:id", ...)
// answer with status. Calls queue up in order.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], status)
}

// Calls counts requests that reached route, injected failures included.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) SetProducts(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = s.products[:0]
	for _, p := range products {
		s.products = append(s.products, remote.ProductPayload{
			ID:        p.ID,
			Name:      p.Name,
			Kind:      p.Kind,
			Price:     remote.NewMoneyPayload(p.Price),
			Available: p.Available,
		})
	}
}

// SeedCart replaces the server cart of token. Lines without an id get one.
func (s *Server) SeedCart(token string, lines ...domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := make([]remote.LinePayload, 0, len(lines))
	for _, l := range lines {
		p := remote.NewLinePayload(l)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		cart = append(cart, p)
	}
	s.carts[token] = cart
}

// Cart returns the server cart of token.
func (s *Server) Cart(token string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]domain.CartLine, 0, len(s.carts[token]))
	for _, p := range s.carts[token] {
		line, err := p.ToDomain()
		if err == nil {
			lines = append(lines, line)
		}
	}
	return lines
}

func (s *Server) Orders() []remote.OrderPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.orders)
}

func (s *Server) countCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls[routeKey(c)]++
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routeKey(c)
		s.mu.Lock()
		queue := s.failures[key]
		status := 0
		if len(queue) > 0 {
			status = queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			abortProblem(c, status, "injected failure")
			return
		}
		c.Next()
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortProblem(c, http.StatusUnauthorized, "bearer token is required")
			return
		}
		c.Set("token", token)
		c.Next()
	}
}

func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, remote.CatalogPayload{Products: slices.Clone(s.products)})
}

func (s *Server) listCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, remote.CartPayload{Lines: slices.Clone(s.carts[c.GetString("token")])})
}

func (s *Server) createLine(c *gin.Context) {
	var in remote.LinePayload
	if err := c.ShouldBindJSON(&in); err != nil {
		abortProblem(c, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateLine(in); msg != "" {
		abortProblem(c, http.StatusUnprocessableEntity, msg)
		return
	}

	token := c.GetString("token")
	key := c.GetHeader("Idempotency-Key")

	s.mu.Lock()
	defer s.mu.Unlock()

	if key != "" {
		if prev, ok := s.idempotency[token+"|"+key]; ok {
			c.JSON(http.StatusOK, prev)
			return
		}
	}

	now := s.now().UTC()
	line := remote.LinePayload{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Variant:   in.Variant,
		UnitPrice: s.priceOf(in.ProductID),
		UpdatedAt: &now,
	}
	s.carts[token] = append(s.carts[token], line)
	if key != "" {
		s.idempotency[token+"|"+key] = line
	}
	c.JSON(http.StatusCreated, line)
}

func (s *Server) updateLine(c *gin.Context) {
	var in remote.QuantityPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		abortProblem(c, http.StatusBadRequest, err.Error())
		return
	}
	if in.Quantity < 1 {
		abortProblem(c, http.StatusUnprocessableEntity, "quantity must be greater than zero")
		return
	}

	token := c.GetString("token")
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[token]
	i := slices.IndexFunc(cart, func(l remote.LinePayload) bool { return l.ID == id })
	if i < 0 {
		abortProblem(c, http.StatusNotFound, fmt.Sprintf("cart line '%s' not found", id))
		return
	}
	now := s.now().UTC()
	cart[i].Quantity = in.Quantity
	cart[i].UpdatedAt = &now
	c.JSON(http.StatusOK, cart[i])
}

func (s *Server) deleteLine(c *gin.Context) {
	token := c.GetString("token")
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[token]
	i := slices.IndexFunc(cart, func(l remote.LinePayload) bool { return l.ID == id })
	if i < 0 {
		abortProblem(c, http.StatusNotFound, fmt.Sprintf("cart line '%s' not found", id))
		return
	}
	s.carts[token] = slices.Delete(cart, i, i+1)
	c.Status(http.StatusNoContent)
}

func (s *Server) clearCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, c.GetString("token"))
	c.Status(http.StatusNoContent)
}

func (s *Server) createOrder(c *gin.Context) {
	var in remote.OrderRequestPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		abortProblem(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(in.Lines) == 0 {
		abortProblem(c, http.StatusUnprocessableEntity, "order has no lines")
		return
	}
	if strings.TrimSpace(in.Address.Line1) == "" || strings.TrimSpace(in.Address.City) == "" {
		abortProblem(c, http.StatusUnprocessableEntity, "delivery address is required")
		return
	}

	token := c.GetString("token")

	s.mu.Lock()
	defer s.mu.Unlock()

	total := remote.MoneyPayload{Amount: decimal.Zero}
	for i, l := range in.Lines {
		price := s.priceOf(l.ProductID)
		in.Lines[i].UnitPrice = price
		if price != nil {
			total.Currency = price.Currency
			total.Amount = total.Amount.Add(price.Amount.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}

	status := string(domain.OrderPlaced)
	if in.Schedule.Frequency != "" && in.Schedule.Frequency != string(domain.FrequencyOnce) {
		status = string(domain.OrderScheduled)
	}

	order := remote.OrderPayload{
		ID:        uuid.NewString(),
		OwnerID:   token,
		Lines:     in.Lines,
		Address:   in.Address,
		Schedule:  in.Schedule,
		Total:     total,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	s.orders = append(s.orders, order)
	delete(s.carts, token)
	c.JSON(http.StatusCreated, order)
}

// priceOf must be called with s.mu held.
func (s *Server) priceOf(productID string) *remote.MoneyPayload {
	for _, p := range s.products {
		if p.ID == productID {
			price := p.Price
			return &price
		}
	}
	return nil
}

func validateLine(in remote.LinePayload) string {
	switch {
	case strings.TrimSpace(in.ProductID) == "":
		return "product_id is required"
	case in.Quantity < 1:
		return "quantity must be greater than zero"
	case !domain.Variant(in.Variant).Valid():
		return fmt.Sprintf("variant '%s' is invalid", in.Variant)
	default:
		return ""
	}
}

func routeKey(c *gin.Context) string {
	return c.Request.Method + " " + c.FullPath()
}

func abortProblem(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, remote.Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

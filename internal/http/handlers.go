package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vitrine/internal/domain"
	"vitrine/internal/repository"
	"vitrine/internal/service"
)

// Server тонкий слой представления поверх сервисов витрины. Формат
// ответов повторяет то, что рисует страница: список товаров, корзина
// со счётчиком, журнал заказов и свод для админской таблицы.
type Server struct {
	engine  *gin.Engine
	catalog *service.CatalogService
	cart    *service.CartService
	orders  *service.OrderService
}

func NewServer(catalog *service.CatalogService, cart *service.CartService, orders *service.OrderService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, catalog: catalog, cart: cart, orders: orders}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.POST("/reset", s.resetProducts)
		products.GET(":id", s.getProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)

		cart := v1.Group("/cart")
		cart.GET("", s.getCart)
		cart.POST("/items", s.addCartItem)
		cart.PUT("/items/:id", s.updateCartItem)
		cart.DELETE("/items/:id", s.removeCartItem)
		cart.DELETE("", s.clearCart)
		cart.POST("/checkout", s.checkout)

		orders := v1.Group("/orders")
		orders.GET("", s.listOrders)
		orders.GET("/summary", s.orderSummary)
	}
}

// Product handlers
type productReq struct {
	Name    string          `json:"name"`
	Model   string          `json:"model"`
	Storage int64           `json:"storage"`
	Color   string          `json:"color"`
	Amount  int64           `json:"amount"`
	Price   decimal.Decimal `json:"price"`
	Img     string          `json:"img"`
}

// @Summary List products
// @Tags products
// @Produce json
// @Param model query []string false "Model facet" collectionFormat(multi)
// @Param storage query []string false "Storage facet" collectionFormat(multi)
// @Param color query []string false "Color facet" collectionFormat(multi)
// @Param sort query string false "Price sort: asc or desc"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		Models:   c.QueryArray("model"),
		Storages: c.QueryArray("storage"),
		Colors:   c.QueryArray("color"),
	}
	list, err := s.catalog.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dir := c.Query("sort"); dir != "" {
		list = service.SortByPrice(list, dir)
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.Create(c, domain.Product{
		Name:    req.Name,
		Model:   req.Model,
		Storage: req.Storage,
		Color:   req.Color,
		Amount:  req.Amount,
		Price:   req.Price,
		Img:     req.Img,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Reset catalog to the seed products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Router /products/reset [post]
func (s *Server) resetProducts(c *gin.Context) {
	if err := s.catalog.Reset(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	list, err := s.catalog.List(c, repository.ProductFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.catalog.GetByID(c, id)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body productReq true "Update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.Update(c, domain.Product{
		ID:      id,
		Name:    req.Name,
		Model:   req.Model,
		Storage: req.Storage,
		Color:   req.Color,
		Amount:  req.Amount,
		Price:   req.Price,
		Img:     req.Img,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.catalog.Delete(c, id); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Cart handlers
type addCartItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type updateCartItemReq struct {
	Quantity int64 `json:"quantity"`
}

// cartView отвечает на все операции корзины текущим её состоянием:
// недопустимые запросы — молчаливые no-op, клиент просто перерисуется
func (s *Server) cartView(c *gin.Context) {
	items, err := s.cart.Items(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, err := s.cart.TotalQuantity(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total_quantity": total})
}

// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	s.cartView(c)
}

// @Summary Add product to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addCartItemReq true "Item"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /cart/items [post]
func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if err := s.cart.Add(c, req.ProductID, qty); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cartView(c)
}

// @Summary Set cart line quantity
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body updateCartItemReq true "Quantity"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /cart/items/{id} [put]
func (s *Server) updateCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	// поле ввода количества обрезается до [1,50] до вызова сервиса
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	if qty > 50 {
		qty = 50
	}
	if err := s.cart.UpdateQuantity(c, id, qty); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cartView(c)
}

// @Summary Remove cart line
// @Tags cart
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /cart/items/{id} [delete]
func (s *Server) removeCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.cart.Remove(c, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cartView(c)
}

// @Summary Clear cart
// @Tags cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cart [delete]
func (s *Server) clearCart(c *gin.Context) {
	if err := s.cart.Clear(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cartView(c)
}

// @Summary Checkout cart
// @Tags cart
// @Produce json
// @Success 201 {array} domain.OrderLine
// @Router /cart/checkout [post]
func (s *Server) checkout(c *gin.Context) {
	lines, err := s.cart.Checkout(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, lines)
}

// Order handlers

// @Summary List order log
// @Tags orders
// @Produce json
// @Success 200 {array} domain.OrderLine
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	lines, err := s.orders.Orders(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lines)
}

// @Summary Orders aggregated per product
// @Tags orders
// @Produce json
// @Success 200 {array} domain.OrderLine
// @Router /orders/summary [get]
func (s *Server) orderSummary(c *gin.Context) {
	rows, err := s.orders.Summary(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch err {
	case service.ErrInvalidInput:
		return http.StatusBadRequest
	case repository.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

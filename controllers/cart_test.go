package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"book-rental/middleware"
	"book-rental/models"
	"book-rental/services"
	"book-rental/utils"
)

type memCatalog struct {
	products map[primitive.ObjectID]models.Product
}

func (m *memCatalog) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, bool, error) {
	p, ok := m.products[id]
	return p, ok, nil
}

func (m *memCatalog) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	found := []models.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

type memCartStore struct {
	carts map[primitive.ObjectID]models.Cart
}

func (m *memCartStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (models.Cart, bool, error) {
	c, ok := m.carts[ownerID]
	return c, ok, nil
}

func (m *memCartStore) Create(ctx context.Context, cart models.Cart) (models.Cart, error) {
	cart.ID = primitive.NewObjectID()
	m.carts[cart.OwnerID] = cart
	return cart, nil
}

func (m *memCartStore) Save(ctx context.Context, cart models.Cart) error {
	m.carts[cart.OwnerID] = cart
	return nil
}

func (m *memCartStore) FindAll(ctx context.Context) ([]models.Cart, error) {
	carts := []models.Cart{}
	for _, c := range m.carts {
		carts = append(carts, c)
	}
	return carts, nil
}

type memUsers struct {
	users map[string]models.User
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	u, ok := m.users[email]
	return u, ok, nil
}

func (m *memUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, bool, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

type cartTestEnv struct {
	router  *mux.Router
	catalog *memCatalog
	store   *memCartStore
	student models.User
	admin   models.User
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()
	utils.JwtKey = []byte("test-secret")

	student := models.User{
		ID:       primitive.NewObjectID(),
		FullName: "Nguyễn Văn A",
		Email:    "student@example.com",
		Phone:    "0901234567",
		Address:  "Hà Nội",
		Role:     models.RoleStudent,
	}
	admin := models.User{
		ID:       primitive.NewObjectID(),
		FullName: "Thủ Thư",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}

	catalog := &memCatalog{products: map[primitive.ObjectID]models.Product{}}
	store := &memCartStore{carts: map[primitive.ObjectID]models.Cart{}}
	users := &memUsers{users: map[string]models.User{
		student.Email: student,
		admin.Email:   admin,
	}}

	svc := services.NewCartService(store, catalog)
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	cc := NewCartController(svc, users, nil, log)

	router := mux.NewRouter()
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/cart", cc.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", cc.GetCart).Methods("GET")
	protected.HandleFunc("/cart/quantity", cc.UpdateQuantity).Methods("PUT")
	protected.HandleFunc("/cart/contact", cc.UpdateContact).Methods("PUT")
	protected.HandleFunc("/cart/extend", cc.ExtendRental).Methods("PATCH")
	protected.HandleFunc("/cart/items/{product_id}", cc.RemoveItem).Methods("DELETE")

	adminRoutes := router.PathPrefix("/").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware)
	adminRoutes.Use(middleware.AdminMiddleware)
	adminRoutes.HandleFunc("/carts", cc.ListCarts).Methods("GET")
	adminRoutes.HandleFunc("/carts/{owner_id}/status", cc.UpdateStatus).Methods("PUT")

	return &cartTestEnv{router: router, catalog: catalog, store: store, student: student, admin: admin}
}

func (env *cartTestEnv) addBook(name string, price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	env.catalog.products[id] = models.Product{ID: id, Name: name, Price: price}
	return id
}

func (env *cartTestEnv) request(t *testing.T, user models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	token, err := utils.GenerateJWT(user.Email, user.Role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestAddToCartHandler(t *testing.T) {
	env := newCartTestEnv(t)
	book := env.addBook("Dế Mèn Phiêu Lưu Ký", 100000)

	rec := env.request(t, env.student, "POST", "/cart", map[string]interface{}{
		"product_id": book.Hex(),
		"quantity":   2,
		"start_date": "2026-03-01",
		"end_date":   "2026-03-15",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Equal(t, env.student.ID, cart.OwnerID)
	assert.Equal(t, 200000.0, cart.TotalPrice)
	assert.Equal(t, env.student.FullName, cart.Contact.FullName, "contact snapshotted from profile")
}

func TestAddToCartHandlerRejectsBadInput(t *testing.T) {
	env := newCartTestEnv(t)
	book := env.addBook("Book", 1000)

	rec := env.request(t, env.student, "POST", "/cart", map[string]interface{}{
		"product_id": book.Hex(),
		"quantity":   0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, env.student, "POST", "/cart", map[string]interface{}{
		"product_id": "not-an-id",
		"quantity":   1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, env.student, "POST", "/cart", map[string]interface{}{
		"product_id": primitive.NewObjectID().Hex(),
		"quantity":   1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown product")
}

func TestCartHandlerRequiresAuth(t *testing.T) {
	env := newCartTestEnv(t)

	req := httptest.NewRequest("GET", "/cart", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCartHandlerEmpty(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.request(t, env.student, "GET", "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []models.CartLineView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Empty(t, views)
}

func TestUpdateQuantityHandlerNotFound(t *testing.T) {
	env := newCartTestEnv(t)
	book := env.addBook("Book", 1000)

	rec := env.request(t, env.student, "PUT", "/cart/quantity", map[string]interface{}{
		"product_id": book.Hex(),
		"quantity":   3,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "no cart for owner yet")
}

func TestRemoveItemHandler(t *testing.T) {
	env := newCartTestEnv(t)
	book := env.addBook("Book", 1000)

	rec := env.request(t, env.student, "POST", "/cart", map[string]interface{}{
		"product_id": book.Hex(),
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, env.student, "DELETE", "/cart/items/"+book.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestUpdateStatusHandler(t *testing.T) {
	env := newCartTestEnv(t)
	book := env.addBook("Book", 1000)

	rec := env.request(t, env.student, "POST", "/cart", map[string]interface{}{
		"product_id": book.Hex(),
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	path := fmt.Sprintf("/carts/%s/status", env.student.ID.Hex())

	// Students cannot drive the workflow.
	rec = env.request(t, env.student, "PUT", path, map[string]string{"status": models.StatusApproved})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, env.admin, "PUT", path, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "status outside the closed set")

	rec = env.request(t, env.admin, "PUT", path, map[string]string{"status": models.StatusApproved})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Equal(t, models.StatusApproved, cart.Status)
}

func TestListCartsHandlerAdminOnly(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.request(t, env.student, "GET", "/carts", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, env.admin, "GET", "/carts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

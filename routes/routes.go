// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"book-rental/controllers"
	"book-rental/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, categoryController *controllers.CategoryController, cartController *controllers.CartController) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")

	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/search", productController.SearchProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")
	router.HandleFunc("/categories", categoryController.GetCategories).Methods("GET")

	// Authenticated routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", userController.UpdateProfile).Methods("PUT")

	// Cart routes
	protected.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart/quantity", cartController.UpdateQuantity).Methods("PUT")
	protected.HandleFunc("/cart/contact", cartController.UpdateContact).Methods("PUT")
	protected.HandleFunc("/cart/extend", cartController.ExtendRental).Methods("PATCH")
	protected.HandleFunc("/cart/items/{product_id}", cartController.RemoveItem).Methods("DELETE")

	// Admin routes
	admin := router.PathPrefix("/").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/categories", categoryController.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories/{id}", categoryController.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/categories/{id}", categoryController.DeleteCategory).Methods("DELETE")
	admin.HandleFunc("/carts", cartController.ListCarts).Methods("GET")
	admin.HandleFunc("/carts/{owner_id}/status", cartController.UpdateStatus).Methods("PUT")
}

// main.go
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"book-rental/controllers"
	"book-rental/middleware"
	"book-rental/routes"
	"book-rental/services"
	"book-rental/stores"
	"book-rental/utils"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client, err := utils.ConnectDB()
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnecting from database")
		}
	}()
	db := client.Database(utils.DatabaseName())

	// Stores and the cart reconciliation engine
	cartStore := stores.NewMongoCartStore(db)
	if err := cartStore.EnsureIndexes(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ensuring cart indexes")
	}
	catalog := stores.NewMongoProductCatalog(db)
	userStore := stores.NewMongoUserStore(db)
	cartService := services.NewCartService(cartStore, catalog)

	// Initialize controllers
	userController := controllers.NewUserController(db, emailService, log)
	productController := controllers.NewProductController(db, log)
	categoryController := controllers.NewCategoryController(db, log)
	cartController := controllers.NewCartController(cartService, userStore, emailService, log)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log))
	routes.RegisterRoutes(router, userController, productController, categoryController, cartController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Info().Str("port", port).Msg("server is running")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

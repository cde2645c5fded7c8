package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"bistro-service/internal/app"
	"bistro-service/internal/server"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL required")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	appInstance := app.New(pool)

	router := gin.Default()

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)

	router.Use(app.AuthMiddlewareFromEnv())

	api := router.Group("/api")
	{
		// availability feeds + direct submission
		api.GET("/bookings", appInstance.ListBookingsFeedHandler)
		api.POST("/bookings", appInstance.CreateBookingHandler)
		api.GET("/events", appInstance.ListEventsFeedHandler)

		// booking widget sessions
		sessions := api.Group("/sessions")
		{
			sessions.POST("", appInstance.CreateSessionHandler)
			sessions.PATCH("/:id", appInstance.UpdateSessionHandler)
			sessions.GET("/:id/floorplan", appInstance.FloorPlanHandler)
			sessions.POST("/:id/availability", appInstance.RefreshAvailabilityHandler)
			sessions.POST("/:id/table", appInstance.SelectTableHandler)
			sessions.POST("/:id/reservation", appInstance.SubmitReservationHandler)
			sessions.POST("/:id/cart", appInstance.AddToCartHandler)
			sessions.GET("/:id/cart", appInstance.GetCartHandler)
			sessions.DELETE("/:id/cart/:index", appInstance.RemoveCartLineHandler)
			sessions.POST("/:id/order", appInstance.PlaceOrderHandler)
		}

		// menu catalog
		api.GET("/products", appInstance.ListProductsHandler)
		api.POST("/products/:id/price", appInstance.PriceQuoteHandler)

		// Google Calendar integration
		calendar := api.Group("/calendar")
		{
			calendar.GET("/auth", appInstance.GoogleAuthHandler)
			calendar.GET("/events", appInstance.GetCalendarEventsHandler)
		}
	}

	server.Run(router)
}

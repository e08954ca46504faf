package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltvest/voltvest_backend/controllers"
)

// RegisterStoreRoutes sets up the public storefront: car inventory and the
// homepage carousel. No auth required for browsing.
func RegisterStoreRoutes(e *echo.Echo, db *mongo.Database) {
	carController := controllers.NewCarController(db)
	slideController := controllers.NewSlideController(db)

	r := e.Group("/api")
	r.GET("/cars", carController.GetCars)
	r.GET("/cars/:id", carController.GetCar)
	r.GET("/slides", slideController.GetSlides)
}

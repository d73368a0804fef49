package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/harborteam/Backend-Care-Harbor/src/cluster"
	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/routes"
)

var ClusterState *cluster.ClusterState

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://web-service:5173, http://localhost:5173",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Connect to the accounts database and the marketplace database
	lib.ConnectDB()
	lib.AutoMigrate()
	lib.ConnectMongo()
	lib.SeedBenefitPrograms()

	// Cluster membership: discover peers and elect the node that will run
	// the background sweep
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "api-service"
	}

	ClusterState = cluster.NewClusterState(serviceName)

	if err := ClusterState.DiscoverNodes(); err != nil {
		fmt.Printf("Warning: Initial node discovery failed: %v\n", err)
	}

	ClusterState.ElectLeader()
	ClusterState.StartLeaderElection()
	ClusterState.StartExpirationSweeper()

	// Register routes
	routes.AuthRoutes(app)
	routes.ProfileRoutes(app)
	routes.ConnectionRoutes(app)
	routes.NotificationRoutes(app)
	routes.BenefitRoutes(app)

	app.Get("/cluster/status", func(c *fiber.Ctx) error {
		return c.JSON(ClusterState.GetClusterInfo())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	var port string = os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	fmt.Printf("Server is running on port %s (Node ID: %d, Role: %s)\n",
		port, ClusterState.GetCurrentNodeID(), ClusterState.GetCurrentRole())
	app.Listen(":" + port)
}

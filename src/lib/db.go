package lib

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB holds the SQLite accounts database.
var DB *gorm.DB

// Mongo holds the marketplace database: profiles, connections, notifications
// and benefit_programs collections.
var Mongo *mongo.Database

// ConnectDB initializes the SQLite connection and sets the global DB variable
func ConnectDB() {
	var dbPath string = os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./careharbor.db"
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	log.Println("Connected to SQLite!")
}

// ConnectMongo initializes the MongoDB connection and sets the global Mongo variable
func ConnectMongo() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "careharbor"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		panic("Failed to connect to MongoDB: " + err.Error())
	}

	if err := client.Ping(ctx, nil); err != nil {
		panic("Failed to ping MongoDB: " + err.Error())
	}

	Mongo = client.Database(dbName)

	log.Println("Connected to MongoDB!")
}

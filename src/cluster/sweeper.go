package cluster

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/harborteam/Backend-Care-Harbor/src/lib"
	"github.com/harborteam/Backend-Care-Harbor/src/models"
)

// StartExpirationSweeper periodically persists the lazy-expiration rule:
// pending inquiries older than the TTL are marked expired. Readers already
// apply the rule on the fly, so the sweep only keeps the stored rows in line
// with what the API reports. Only the leader sweeps, so the cluster does the
// work once per interval no matter how many replicas run.
func (cs *ClusterState) StartExpirationSweeper() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			if !cs.IsLeader() {
				continue
			}
			cs.sweepExpiredInquiries()
		}
	}()

	log.Println("Inquiry expiration sweeper started (every hour, leader only)")
}

func (cs *ClusterState) sweepExpiredInquiries() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	cutoff := now.Add(-lib.ConnectionTTL())

	filter := bson.M{
		"type":      models.ConnectionTypeInquiry,
		"status":    models.ConnectionStatusPending,
		"createdAt": bson.M{"$lt": cutoff},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.ConnectionStatusExpired,
			"updatedAt": now,
		},
	}

	result, err := lib.Mongo.Collection("connections").UpdateMany(ctx, filter, update)
	if err != nil {
		log.Printf("Error sweeping expired inquiries: %v", err)
		return
	}

	if result.ModifiedCount > 0 {
		log.Printf("Expired %d stale pending inquiries", result.ModifiedCount)
	}
}

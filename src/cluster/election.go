package cluster

import (
	"log"
	"time"
)

// ElectLeader picks the healthy node with the lowest ID as leader. Every node
// runs the same deterministic rule over the same DNS answer, so no votes are
// exchanged.
func (cs *ClusterState) ElectLeader() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	nodes := cs.healthyNodesByID()
	if len(nodes) == 0 {
		log.Println("No healthy nodes found for leader election")
		return
	}

	newLeaderID := nodes[0].ID
	newLeaderAddress := nodes[0].Address

	if cs.LeaderID != newLeaderID {
		oldLeaderID := cs.LeaderID
		cs.LeaderID = newLeaderID
		cs.LeaderAddress = newLeaderAddress

		log.Printf("Leader changed: Old=%d, New=%d", oldLeaderID, newLeaderID)

		if cs.CurrentNodeID == newLeaderID {
			cs.CurrentRole = Leader
			log.Printf("This node (ID=%d) is now the LEADER", cs.CurrentNodeID)
		} else {
			cs.CurrentRole = Follower
			log.Printf("This node (ID=%d) is now a FOLLOWER. Leader is ID=%d", cs.CurrentNodeID, newLeaderID)
		}

		for _, node := range cs.Nodes {
			if node.ID == newLeaderID {
				node.Role = Leader
			} else {
				node.Role = Follower
			}
		}
	}
}

// healthyNodesByID returns healthy nodes sorted by ID ascending. Callers must
// hold the lock.
func (cs *ClusterState) healthyNodesByID() []*Node {
	nodes := make([]*Node, 0, len(cs.Nodes))
	for _, node := range cs.Nodes {
		if node.IsHealthy {
			nodes = append(nodes, node)
		}
	}

	for i := 0; i < len(nodes)-1; i++ {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].ID > nodes[j].ID {
				nodes[i], nodes[j] = nodes[j], nodes[i]
			}
		}
	}

	return nodes
}

// StartLeaderElection re-runs discovery and election every 10 seconds
func (cs *ClusterState) StartLeaderElection() {
	ticker := time.NewTicker(10 * time.Second)
	go func() {
		for range ticker.C {
			if err := cs.DiscoverNodes(); err != nil {
				log.Printf("Error discovering nodes: %v", err)
				continue
			}
			cs.ElectLeader()
		}
	}()

	log.Println("Leader election process started (every 10 seconds)")
}

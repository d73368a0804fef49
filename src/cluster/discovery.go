package cluster

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// DiscoverNodes uses a DNS lookup of the service alias to find every API
// replica on the network. Docker Swarm publishes one A record per container
// behind the alias, so the answer is the current replica set.
func (cs *ClusterState) DiscoverNodes() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	currentIP, err := getCurrentIP()
	if err != nil {
		return fmt.Errorf("error getting current IP: %v", err)
	}

	ips, err := net.LookupIP(cs.ServiceName)
	if err != nil {
		return fmt.Errorf("DNS lookup failed for service %s: %v", cs.ServiceName, err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Mark everything unseen, then refresh from the DNS answer
	for _, node := range cs.Nodes {
		node.IsHealthy = false
	}

	for _, ip := range ips {
		ipStr := ip.String()
		nodeID := generateNodeIDFromIP(ipStr)

		if existingNode, exists := cs.Nodes[nodeID]; exists {
			existingNode.LastSeen = time.Now()
			existingNode.IsHealthy = true
		} else {
			cs.Nodes[nodeID] = &Node{
				ID:        nodeID,
				Address:   fmt.Sprintf("http://%s:%s", ipStr, port),
				Role:      Follower,
				LastSeen:  time.Now(),
				IsHealthy: true,
			}
			log.Printf("Discovered new node: ID=%d, IP=%s", nodeID, ipStr)
		}

		if ipStr == currentIP {
			cs.CurrentNodeID = nodeID
		}
	}

	cs.cleanupStaleNodes()

	return nil
}

// generateNodeIDFromIP derives a stable node ID from the container IP
func generateNodeIDFromIP(ip string) int {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		// Not IPv4, hash the string instead
		hash := 0
		for _, ch := range ip {
			hash = hash*31 + int(ch)
		}
		return hash % 10000
	}

	thirdOctet, _ := strconv.Atoi(parts[2])
	fourthOctet, _ := strconv.Atoi(parts[3])
	return thirdOctet*256 + fourthOctet
}

// getCurrentIP returns the container's own IPv4 address
func getCurrentIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "", fmt.Errorf("no valid IP address found")
}

// cleanupStaleNodes drops nodes that have not shown up in DNS recently
func (cs *ClusterState) cleanupStaleNodes() {
	cutoff := time.Now().Add(-30 * time.Second)
	for id, node := range cs.Nodes {
		if node.LastSeen.Before(cutoff) {
			log.Printf("Removing stale node: ID=%d", id)
			delete(cs.Nodes, id)
		}
	}
}

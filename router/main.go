package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"sync"
	"time"
)

// routerConfig is read once from the environment at startup.
type routerConfig struct {
	ServiceName string
	ServicePort string
	HealthPath  string
	ListenPort  string
	Refresh     time.Duration
}

func loadConfig() routerConfig {
	return routerConfig{
		ServiceName: getEnv("SERVICE_NAME", "api-service"),
		ServicePort: getEnv("SERVICE_PORT", "3000"),
		HealthPath:  getEnv("HEALTH_PATH", "/health"),
		ListenPort:  getEnv("ROUTER_PORT", "8080"),
		Refresh:     10 * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type replica struct {
	ip        string
	target    *url.URL
	proxy     *httputil.ReverseProxy
	healthy   bool
	lastCheck time.Time
}

// replicaPool tracks the API containers behind the Swarm service alias and
// hands out healthy ones round-robin.
type replicaPool struct {
	mu       sync.RWMutex
	cfg      routerConfig
	replicas []*replica
	next     int
	client   *http.Client
}

func newReplicaPool(cfg routerConfig) *replicaPool {
	return &replicaPool{
		cfg:    cfg,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

func (p *replicaPool) run(ctx context.Context) {
	p.refresh()
	p.checkAll()

	go p.loop(ctx, p.cfg.Refresh, p.refresh)
	go p.loop(ctx, 5*time.Second, p.checkAll)
}

func (p *replicaPool) loop(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// refresh resolves the service alias. Swarm answers with one A record per
// container, so the DNS answer is the current replica set.
func (p *replicaPool) refresh() {
	ips, err := net.LookupIP(p.cfg.ServiceName)
	if err != nil {
		log.Printf("DNS lookup failed for %s: %v", p.cfg.ServiceName, err)
		return
	}

	seen := make(map[string]bool, len(ips))
	for _, ip := range ips {
		seen[ip.String()] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.replicas[:0]
	known := make(map[string]bool, len(p.replicas))
	for _, r := range p.replicas {
		if seen[r.ip] {
			kept = append(kept, r)
			known[r.ip] = true
		} else {
			log.Printf("API replica left the service: %s", r.target)
		}
	}
	p.replicas = kept

	for ip := range seen {
		if known[ip] {
			continue
		}
		target := &url.URL{Scheme: "http", Host: net.JoinHostPort(ip, p.cfg.ServicePort)}
		p.replicas = append(p.replicas, &replica{
			ip:     ip,
			target: target,
			proxy:  httputil.NewSingleHostReverseProxy(target),
		})
		log.Printf("API replica discovered: %s", target)
	}
}

func (p *replicaPool) checkAll() {
	p.mu.RLock()
	replicas := make([]*replica, len(p.replicas))
	copy(replicas, p.replicas)
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, r := range replicas {
		wg.Add(1)
		go func(r *replica) {
			defer wg.Done()
			p.check(r)
		}(r)
	}
	wg.Wait()
}

func (p *replicaPool) check(r *replica) {
	healthy := false
	resp, err := p.client.Get(r.target.String() + p.cfg.HealthPath)
	if err == nil {
		healthy = resp.StatusCode == http.StatusOK
		resp.Body.Close()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if healthy != r.healthy {
		if healthy {
			log.Printf("API replica recovered: %s", r.target)
		} else {
			log.Printf("API replica unhealthy: %s", r.target)
		}
	}
	r.healthy = healthy
	r.lastCheck = time.Now()
}

// pick returns the next healthy replica round-robin, or nil when none are up.
func (p *replicaPool) pick() *replica {
	p.mu.Lock()
	defer p.mu.Unlock()

	for range p.replicas {
		r := p.replicas[p.next%len(p.replicas)]
		p.next++
		if r.healthy {
			return r
		}
	}
	return nil
}

func (p *replicaPool) serveProxy(w http.ResponseWriter, req *http.Request) {
	r := p.pick()
	if r == nil {
		http.Error(w, "No healthy API replicas", http.StatusServiceUnavailable)
		return
	}
	req.Header.Set("X-Forwarded-Host", req.Host)
	r.proxy.ServeHTTP(w, req)
}

type replicaStatus struct {
	Target    string `json:"target"`
	Healthy   bool   `json:"healthy"`
	LastCheck string `json:"last_check"`
}

type poolStatus struct {
	Service  string          `json:"service"`
	Total    int             `json:"total"`
	Healthy  int             `json:"healthy"`
	Replicas []replicaStatus `json:"replicas"`
}

func (p *replicaPool) serveStatus(w http.ResponseWriter, _ *http.Request) {
	p.mu.RLock()
	status := poolStatus{
		Service:  p.cfg.ServiceName,
		Total:    len(p.replicas),
		Replicas: make([]replicaStatus, 0, len(p.replicas)),
	}
	for _, r := range p.replicas {
		if r.healthy {
			status.Healthy++
		}
		status.Replicas = append(status.Replicas, replicaStatus{
			Target:    r.target.String(),
			Healthy:   r.healthy,
			LastCheck: r.lastCheck.Format(time.RFC3339),
		})
	}
	p.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("Error encoding router status: %v", err)
	}
}

func main() {
	cfg := loadConfig()
	log.Printf("CareHarbor router: fronting %s:%s (health %s), listening on :%s",
		cfg.ServiceName, cfg.ServicePort, cfg.HealthPath, cfg.ListenPort)

	pool := newReplicaPool(cfg)
	pool.run(context.Background())

	http.HandleFunc("/router/status", pool.serveStatus)
	http.HandleFunc("/router/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	http.HandleFunc("/", pool.serveProxy)

	if err := http.ListenAndServe(":"+cfg.ListenPort, nil); err != nil {
		log.Fatalf("Router failed: %v", err)
	}
}

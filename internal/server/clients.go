package server

import (
	"sort"
	"strings"
	"sync"
)

// ClientManager tracks live connections by id and by account name.
// Thread-safe for concurrent access.
type ClientManager struct {
	mu       sync.RWMutex
	nextID   uint64
	clients  map[uint64]*Client
	accounts map[string]*Client // key: lower-case account name
	perIP    map[string]int
}

// NewClientManager creates a new client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:  make(map[uint64]*Client, 256),
		accounts: make(map[string]*Client, 256),
		perIP:    make(map[string]int, 256),
	}
}

// NextID allocates a connection id. Ids start at 1 and are never reused.
func (cm *ClientManager) NextID() uint64 {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.nextID++
	return cm.nextID
}

// Register adds a client. With maxPerIP > 0 the client is refused when its IP
// already holds that many connections.
func (cm *ClientManager) Register(c *Client, maxPerIP int) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if maxPerIP > 0 && cm.perIP[c.ip] >= maxPerIP {
		return false
	}
	cm.clients[c.id] = c
	cm.perIP[c.ip]++
	return true
}

// Unregister removes a client and its account binding, if it still owns it.
func (cm *ClientManager) Unregister(c *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, ok := cm.clients[c.id]; !ok {
		return
	}
	delete(cm.clients, c.id)

	if n := cm.perIP[c.ip] - 1; n > 0 {
		cm.perIP[c.ip] = n
	} else {
		delete(cm.perIP, c.ip)
	}

	for name, owner := range cm.accounts {
		if owner == c {
			delete(cm.accounts, name)
			break
		}
	}
}

// BindAccount associates an account name with c and returns the client that
// held it before, nil when none did.
func (cm *ClientManager) BindAccount(name string, c *Client) *Client {
	key := strings.ToLower(name)

	cm.mu.Lock()
	defer cm.mu.Unlock()

	prev := cm.accounts[key]
	cm.accounts[key] = c
	if prev == c {
		return nil
	}
	return prev
}

// Get returns the client with the given id, nil if not found.
func (cm *ClientManager) Get(id uint64) *Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[id]
}

// GetByAccount returns the client logged in as name, nil if not found.
func (cm *ClientManager) GetByAccount(name string) *Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.accounts[strings.ToLower(name)]
}

// Count returns total number of connected clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// CountByIP returns the number of connections from ip.
func (cm *ClientManager) CountByIP(ip string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.perIP[ip]
}

// ForEachClient iterates over all connected clients.
// If fn returns false, iteration stops. fn must not call back into the manager.
func (cm *ClientManager) ForEachClient(fn func(*Client) bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, client := range cm.clients {
		if !fn(client) {
			return
		}
	}
}

// Snapshot returns the info of every client ordered by id.
func (cm *ClientManager) Snapshot() []ClientInfo {
	cm.mu.RLock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, c := range cm.clients {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	infos := make([]ClientInfo, len(clients))
	for i, c := range clients {
		infos[i] = c.Info()
	}
	return infos
}

// Lookup returns the info of one client.
func (cm *ClientManager) Lookup(id uint64) (ClientInfo, bool) {
	c := cm.Get(id)
	if c == nil {
		return ClientInfo{}, false
	}
	return c.Info(), true
}

// DisconnectAll disconnects every client with the given cause.
func (cm *ClientManager) DisconnectAll(cause error) int {
	cm.mu.RLock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, c := range cm.clients {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	for _, c := range clients {
		c.Disconnect(cause)
	}
	return len(clients)
}

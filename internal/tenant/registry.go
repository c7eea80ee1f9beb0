package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Endpoints are the upstream addresses of one tenant in one environment.
type Endpoints struct {
	BaseURL          string `json:"base_url"`
	FindSubscribeURL string `json:"find_subscribe_url"`
	LogoffURL        string `json:"logoff_url"`
}

type Upstream struct {
	AppName string    `json:"app_name"`
	Dev     Endpoints `json:"dev"`
	Prod    Endpoints `json:"prod"`
}

type UpstreamsFile struct {
	Default string     `json:"default"`
	Apps    []Upstream `json:"apps"`
}

const DefaultAppName = "AlgeniusNext"

// Registry maps app names to their upstream endpoints. Unknown names resolve
// to the default app.
type Registry struct {
	mu         sync.RWMutex
	defaultApp string
	apps       map[string]*Upstream
}

func NewRegistry(defaultApp string) *Registry {
	return &Registry{
		defaultApp: defaultApp,
		apps:       make(map[string]*Upstream),
	}
}

// DefaultRegistry returns the built-in upstream table.
func DefaultRegistry() *Registry {
	r := NewRegistry(DefaultAppName)
	for i := range defaultUpstreams {
		u := defaultUpstreams[i]
		r.Register(&u)
	}
	return r
}

// LoadFromFile overlays the apps in path on top of the built-in table.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstreams config: %w", err)
	}

	var file UpstreamsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse upstreams config: %w", err)
	}

	registry := DefaultRegistry()
	for i := range file.Apps {
		if file.Apps[i].AppName == "" {
			return nil, fmt.Errorf("upstreams config: app %d has no app_name", i)
		}
		registry.Register(&file.Apps[i])
	}
	if file.Default != "" {
		if !registry.Exists(file.Default) {
			return nil, fmt.Errorf("upstreams config: default app %q is not defined", file.Default)
		}
		registry.defaultApp = file.Default
	}
	return registry, nil
}

func (r *Registry) Register(u *Upstream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[u.AppName] = u
}

func (r *Registry) Get(appName string) *Upstream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.apps[appName]
}

func (r *Registry) Exists(appName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.apps[appName]
	return ok
}

// Resolve returns the upstream for appName, or the default app when the name
// is empty or unknown.
func (r *Registry) Resolve(appName string) *Upstream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.apps[appName]; ok {
		return u
	}
	return r.apps[r.defaultApp]
}

// Endpoints picks the dev or prod variant for appName.
func (r *Registry) Endpoints(appName string, production bool) (Endpoints, bool) {
	u := r.Resolve(appName)
	if u == nil {
		return Endpoints{}, false
	}
	if production {
		return u.Prod, true
	}
	return u.Dev, true
}

func (r *Registry) All() []*Upstream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Upstream, 0, len(r.apps))
	for _, u := range r.apps {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppName < result[j].AppName })
	return result
}

package config

import (
	"sort"

	"ragbench/internal/llm"
)

// ModelRoute holds dedicated credentials for one model identifier.
// Empty fields inherit from the instance defaults.
type ModelRoute struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
}

func (r ModelRoute) isEmpty() bool {
	return r == ModelRoute{}
}

// RoutingTable maps model identifiers to routes. It is immutable once built.
type RoutingTable struct {
	routes map[string]ModelRoute
}

// NewRoutingTable copies routes into a table, dropping entries with no fields set.
func NewRoutingTable(routes map[string]ModelRoute) RoutingTable {
	copied := make(map[string]ModelRoute, len(routes))
	for model, route := range routes {
		if route.isEmpty() {
			continue
		}
		copied[model] = route
	}
	return RoutingTable{routes: copied}
}

// Route returns the route for model.
func (t RoutingTable) Route(model string) (ModelRoute, bool) {
	route, ok := t.routes[model]
	return route, ok
}

// Models returns the routed model identifiers in sorted order.
func (t RoutingTable) Models() []string {
	models := make([]string, 0, len(t.routes))
	for model := range t.routes {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// Resolve overrides each field of base that model's route sets. A missing API
// version falls back to llm.DefaultAPIVersion.
func (t RoutingTable) Resolve(model string, base llm.Credentials) llm.Credentials {
	if route, ok := t.routes[model]; ok {
		if route.Endpoint != "" {
			base.Endpoint = route.Endpoint
		}
		if route.APIKey != "" {
			base.APIKey = route.APIKey
		}
		if route.APIVersion != "" {
			base.APIVersion = route.APIVersion
		}
		if route.Deployment != "" {
			base.Deployment = route.Deployment
		}
	}
	if base.APIVersion == "" {
		base.APIVersion = llm.DefaultAPIVersion
	}
	return base
}

// routeEnv names the environment variables of one routed model.
type routeEnv struct {
	model       string
	prefix      string
	deployments []string
}

var routedModels = []routeEnv{
	{model: "o3", prefix: "O3", deployments: []string{"O3_DEPLOYMENT_NAME", "O3_DEPLOYMENT"}},
	{model: "o4-mini", prefix: "O4_MINI", deployments: []string{"O4_MINI_DEPLOYMENT_NAME", "O4_MINI_DEPLOYMENT"}},
	{model: "gpt-4o", prefix: "GPT4O", deployments: []string{"GPT4O_DEPLOYMENT", "GPT4O_DEPLOYMENT_NAME"}},
}

func routesFromEnv() RoutingTable {
	routes := make(map[string]ModelRoute, len(routedModels))
	for _, r := range routedModels {
		routes[r.model] = ModelRoute{
			Endpoint:   getEnv(r.prefix+"_ENDPOINT", ""),
			APIKey:     getEnv(r.prefix+"_KEY", ""),
			APIVersion: getEnv(r.prefix+"_API_VERSION", ""),
			Deployment: firstEnv(r.deployments...),
		}
	}
	return NewRoutingTable(routes)
}

package config

import (
	"testing"

	"ragbench/internal/llm"
)

func TestRoutingTable_Resolve(t *testing.T) {
	base := llm.Credentials{
		Endpoint:   "https://default.example.com",
		APIKey:     "default-key",
		APIVersion: "2024-02-01",
		Deployment: "o3",
	}
	table := NewRoutingTable(map[string]ModelRoute{
		"o3":      {Endpoint: "https://o3.example.com", APIKey: "o3-key", APIVersion: "2024-12-01-preview", Deployment: "o3-prod"},
		"o4-mini": {APIKey: "mini-key"},
		"gpt-4o":  {},
	})

	tests := []struct {
		name  string
		model string
		base  llm.Credentials
		want  llm.Credentials
	}{
		{
			name:  "full route",
			model: "o3",
			base:  base,
			want:  llm.Credentials{Endpoint: "https://o3.example.com", APIKey: "o3-key", APIVersion: "2024-12-01-preview", Deployment: "o3-prod"},
		},
		{
			name:  "partial route inherits field by field",
			model: "o4-mini",
			base:  llm.Credentials{Endpoint: "https://default.example.com", APIKey: "default-key", APIVersion: "2024-02-01", Deployment: "o4-mini"},
			want:  llm.Credentials{Endpoint: "https://default.example.com", APIKey: "mini-key", APIVersion: "2024-02-01", Deployment: "o4-mini"},
		},
		{
			name:  "unrouted model",
			model: "gpt-35",
			base:  base,
			want:  base,
		},
		{
			name:  "empty route is dropped",
			model: "gpt-4o",
			base:  base,
			want:  base,
		},
		{
			name:  "default api version",
			model: "none",
			base:  llm.Credentials{Endpoint: "e", Deployment: "d"},
			want:  llm.Credentials{Endpoint: "e", Deployment: "d", APIVersion: llm.DefaultAPIVersion},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Resolve(tt.model, tt.base); got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.model, got, tt.want)
			}
		})
	}

	if _, ok := table.Route("gpt-4o"); ok {
		t.Error("Expected empty gpt-4o route to be dropped")
	}
}

func TestRoutingTable_Immutable(t *testing.T) {
	routes := map[string]ModelRoute{"o3": {Deployment: "o3-prod"}}
	table := NewRoutingTable(routes)
	routes["o3"] = ModelRoute{Deployment: "changed"}

	route, _ := table.Route("o3")
	if route.Deployment != "o3-prod" {
		t.Errorf("Table changed after source map mutation: %+v", route)
	}
}

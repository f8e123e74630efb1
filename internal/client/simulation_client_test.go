package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

func TestRunScenarioSendsReducedPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/scenario/run" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_cost": 5000, "expected_delay": 3.5, "service_level": 0.95, "safety_stock": 21.3, "forecast": [1, 2]}`))
	}))
	defer srv.Close()

	c := NewSimulationClient(srv.URL+"/", 0)
	resp, err := c.RunScenario(context.Background(), domain.SimulationRequest{Demand: 500, LeadTime: 7, Cost: 10})
	if err != nil {
		t.Fatalf("RunScenario returned error: %v", err)
	}

	if len(got) != 3 {
		t.Errorf("expected 3 keys in payload, got %v", got)
	}
	for _, key := range []string{"demand", "lead_time", "cost"} {
		if _, ok := got[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}

	if resp.TotalCost != 5000 || resp.ExpectedDelay != 3.5 || resp.ServiceLevel != 0.95 {
		t.Errorf("unexpected metrics %+v", resp)
	}
	if string(resp.Extra["safety_stock"]) != "21.3" {
		t.Errorf("expected safety_stock passed through, got %s", resp.Extra["safety_stock"])
	}
	if _, ok := resp.Extra["total_cost"]; ok {
		t.Error("required keys should not be duplicated in Extra")
	}
}

func TestRunScenarioFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "missing service level",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total_cost": 1, "expected_delay": 2}`))
			},
		},
		{
			name: "null total cost",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total_cost": null, "expected_delay": 2, "service_level": 0.95}`))
			},
		},
		{
			name: "all metrics null",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"total_cost": null, "expected_delay": null, "service_level": null}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewSimulationClient(srv.URL, 0).RunScenario(context.Background(), domain.SimulationRequest{Demand: 1})
			if !errors.Is(err, domain.ErrBackendUnavailable) {
				t.Errorf("expected ErrBackendUnavailable, got %v", err)
			}
		})
	}
}

func TestRunScenarioTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewSimulationClient(url, 0).RunScenario(context.Background(), domain.SimulationRequest{Demand: 1})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

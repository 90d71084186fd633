package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	chipapi "alphachip/pkg/alphachip"
)

func writeConfig(t *testing.T, payload map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run_config.json")
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"run_id":          "cfg-run",
		"agent":           "policy",
		"iterations":      12,
		"interval_ms":     5,
		"seed":            77,
		"batch_size":      16,
		"buffer_capacity": 512,
		"learning_rate":   0.01,
		"save_model":      true,
		"initial_metrics": map[string]any{
			"power_efficiency":    60,
			"area_utilization":    70,
			"thermal_dissipation": 30,
			"signal_integrity":    85,
		},
	})

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load run request: %v", err)
	}
	if req.RunID != "cfg-run" || req.Agent != "policy" {
		t.Fatalf("unexpected identity fields: %+v", req)
	}
	if req.Iterations != 12 || req.Interval != 5*time.Millisecond || req.Seed != 77 {
		t.Fatalf("unexpected run controls: iters=%d interval=%s seed=%d", req.Iterations, req.Interval, req.Seed)
	}
	if req.BatchSize != 16 || req.BufferCapacity != 512 || req.LearningRate != 0.01 {
		t.Fatalf("unexpected learner controls: %+v", req)
	}
	if !req.SaveModel || req.LoadModel {
		t.Fatalf("unexpected persistence flags: save=%t load=%t", req.SaveModel, req.LoadModel)
	}
	if req.InitialMetrics == nil {
		t.Fatal("expected initial metrics from config")
	}
	if req.InitialMetrics.PowerEfficiency != 60 || req.InitialMetrics.SignalIntegrity != 85 {
		t.Fatalf("unexpected initial metrics: %+v", req.InitialMetrics)
	}
}

func TestLoadRunRequestFromConfigIgnoresWrongTypes(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"run_id":     42,
		"iterations": "many",
		"seed":       "one",
	})

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load run request: %v", err)
	}
	if req.RunID != "" || req.Iterations != 0 || req.Seed != 0 {
		t.Fatalf("expected zero values for mistyped fields, got %+v", req)
	}
}

func TestLoadRunRequestFromConfigRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOverrideFromFlagsOnlyTouchesSetFlags(t *testing.T) {
	req := chipapi.RunRequest{
		RunID:      "cfg-run",
		Agent:      "value",
		Iterations: 12,
		Seed:       77,
	}
	set := map[string]bool{"iterations": true, "seed": true}
	overrideFromFlags(&req, set, map[string]any{
		"run-id":     "flag-run",
		"agent":      "policy",
		"iterations": 3,
		"seed":       int64(9),
	})

	if req.RunID != "cfg-run" || req.Agent != "value" {
		t.Fatalf("unset flags must not override config: %+v", req)
	}
	if req.Iterations != 3 || req.Seed != 9 {
		t.Fatalf("set flags must override config: iters=%d seed=%d", req.Iterations, req.Seed)
	}
}

func TestLoadOrDefaultRunRequestEmptyPath(t *testing.T) {
	req, err := loadOrDefaultRunRequest("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if req.RunID != "" || req.Iterations != 0 {
		t.Fatalf("expected zero request, got %+v", req)
	}
}

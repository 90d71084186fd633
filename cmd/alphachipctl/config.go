package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"alphachip/internal/model"
	chipapi "alphachip/pkg/alphachip"
)

func loadRunRequestFromConfig(path string) (chipapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chipapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return chipapi.RunRequest{}, err
	}

	var req chipapi.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["agent"]); ok {
		req.Agent = v
	}
	if v, ok := asInt(raw["iterations"]); ok {
		req.Iterations = v
	}
	if v, ok := asInt(raw["interval_ms"]); ok {
		req.Interval = time.Duration(v) * time.Millisecond
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["batch_size"]); ok {
		req.BatchSize = v
	}
	if v, ok := asInt(raw["buffer_capacity"]); ok {
		req.BufferCapacity = v
	}
	if v, ok := asFloat64(raw["learning_rate"]); ok {
		req.LearningRate = v
	}
	if v, ok := asBool(raw["load_model"]); ok {
		req.LoadModel = v
	}
	if v, ok := asBool(raw["save_model"]); ok {
		req.SaveModel = v
	}

	if metricsMap, ok := raw["initial_metrics"].(map[string]any); ok {
		var metrics model.PerformanceMetrics
		if v, ok := asFloat64(metricsMap["power_efficiency"]); ok {
			metrics.PowerEfficiency = v
		}
		if v, ok := asFloat64(metricsMap["area_utilization"]); ok {
			metrics.AreaUtilization = v
		}
		if v, ok := asFloat64(metricsMap["thermal_dissipation"]); ok {
			metrics.ThermalDissipation = v
		}
		if v, ok := asFloat64(metricsMap["signal_integrity"]); ok {
			metrics.SignalIntegrity = v
		}
		req.InitialMetrics = &metrics
	}

	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(req *chipapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "agent":
			req.Agent = v.(string)
		case "iterations":
			req.Iterations = v.(int)
		case "interval-ms":
			req.Interval = time.Duration(v.(int)) * time.Millisecond
		case "seed":
			req.Seed = v.(int64)
		case "batch-size":
			req.BatchSize = v.(int)
		case "buffer-capacity":
			req.BufferCapacity = v.(int)
		case "learning-rate":
			req.LearningRate = v.(float64)
		case "load-model":
			req.LoadModel = v.(bool)
		case "save-model":
			req.SaveModel = v.(bool)
		}
	}
}

func loadOrDefaultRunRequest(configPath string) (chipapi.RunRequest, error) {
	if configPath == "" {
		return chipapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return chipapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	chipapi "alphachip/pkg/alphachip"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "export-state":
		return runExportState(ctx, args[1:])
	case "import-state":
		return runImportState(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "alphachip.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := chipapi.New(ctx, chipapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "run id (required unless set in config)")
	agentKind := fs.String("agent", chipapi.AgentValue, "agent kind: value|policy")
	iterations := fs.Int("iterations", 100, "optimization iteration count")
	intervalMS := fs.Int("interval-ms", 0, "pause between iterations in milliseconds (0 disables)")
	seed := fs.Int64("seed", 1, "rng seed")
	batchSize := fs.Int("batch-size", 0, "replay batch size (0 uses agent default)")
	bufferCapacity := fs.Int("buffer-capacity", 0, "replay buffer capacity (0 uses agent default)")
	learningRate := fs.Float64("learning-rate", 0, "sgd learning rate (0 uses agent default)")
	loadModel := fs.Bool("load-model", false, "restore the agent's stored snapshot before running")
	saveModel := fs.Bool("save-model", false, "persist the agent's snapshot after running")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "alphachip.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = chipapi.RunRequest{
			RunID:          *runID,
			Agent:          *agentKind,
			Iterations:     *iterations,
			Interval:       time.Duration(*intervalMS) * time.Millisecond,
			Seed:           *seed,
			BatchSize:      *batchSize,
			BufferCapacity: *bufferCapacity,
			LearningRate:   *learningRate,
			LoadModel:      *loadModel,
			SaveModel:      *saveModel,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":          *runID,
			"agent":           *agentKind,
			"iterations":      *iterations,
			"interval-ms":     *intervalMS,
			"seed":            *seed,
			"batch-size":      *batchSize,
			"buffer-capacity": *bufferCapacity,
			"learning-rate":   *learningRate,
			"load-model":      *loadModel,
			"save-model":      *saveModel,
		})
	}
	if req.RunID == "" {
		return errors.New("run requires --run-id or run_id in config")
	}

	client, err := chipapi.New(ctx, chipapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s agent=%s iterations=%d seed=%d\n", result.RunID, result.Agent, result.Iterations, req.Seed)
	for i, reward := range result.RewardHistory {
		fmt.Printf("iteration=%d reward=%.6f\n", i+1, reward)
	}
	fmt.Printf("final_reward=%.6f components=%d\n", result.FinalReward, len(result.FinalState.Components))
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit stored run data as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "alphachip.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("show requires --run-id")
	}

	client, err := chipapi.New(ctx, chipapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	state, ok, err := client.ChipState(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("no stored run run_id=%s\n", *runID)
		return nil
	}
	history, _, err := client.RewardHistory(ctx, *runID)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID         string    `json:"run_id"`
			State         any       `json:"state"`
			RewardHistory []float64 `json:"reward_history"`
		}{RunID: *runID, State: state, RewardHistory: history})
	}

	fmt.Printf("run_id=%s components=%d connections=%d\n", *runID, len(state.Components), len(state.Connections))
	fmt.Printf("metrics power=%.2f area=%.2f thermal=%.2f signal=%.2f network=%.4f\n",
		state.Metrics.PowerEfficiency,
		state.Metrics.AreaUtilization,
		state.Metrics.ThermalDissipation,
		state.Metrics.SignalIntegrity,
		state.NetworkEfficiency,
	)
	for i, reward := range history {
		fmt.Printf("iteration=%d reward=%.6f\n", i+1, reward)
	}
	return nil
}

func runExportState(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export-state", flag.ContinueOnError)
	outPath := fs.String("out", "processor.json", "output JSON path")
	qubits := fs.Int("qubits", 0, "qubit count (0 uses processor default)")
	seed := fs.Int64("seed", 1, "rng seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := chipapi.New(context.Background(), chipapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.ExportProcessorState(*outPath, *qubits, *seed); err != nil {
		return err
	}
	fmt.Printf("exported processor state path=%s qubits=%d seed=%d\n", *outPath, *qubits, *seed)
	return nil
}

func runImportState(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("import-state", flag.ContinueOnError)
	inPath := fs.String("in", "processor.json", "input JSON path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := chipapi.New(context.Background(), chipapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	p, err := client.ImportProcessorState(*inPath)
	if err != nil {
		return err
	}
	m := p.Metrics()
	fmt.Printf("imported processor state path=%s coherence=%.4f entanglement=%.4f efficiency=%.2f\n",
		*inPath, p.Coherence(), p.Entanglement(), m.Efficiency)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: alphachipctl <init|run|show|export-state|import-state> [flags]", msg)
}

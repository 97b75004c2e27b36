package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/historyclient"
)

type loadMode string

const (
	modeSave           loadMode = "save"
	modeSaveList       loadMode = "save-list"
	modeSaveListDelete loadMode = "save-list-delete"

	outcomeOK    = "ok"
	outcomeError = "error"
)

type config struct {
	apiURL      string
	total       int
	concurrency int
	timeout     time.Duration
	mode        loadMode
	userTag     string
	productID   string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Outcomes  map[string]int64 `json:"outcomes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type loadReport struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	outcomes  map[string]int64
	latencies []float64
}

// collector копит задержки и исходы по каждому вызову API.
type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{methods: make(map[string]*methodStats)}
}

func (c *collector) record(method string, latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[method]
	if !ok {
		stats = &methodStats{outcomes: make(map[string]int64)}
		c.methods[method] = stats
	}

	stats.calls++
	outcome := outcomeOK
	if err != nil {
		stats.failed++
		outcome = outcomeError
	} else {
		stats.success++
	}
	stats.outcomes[outcome]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) loadReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := loadReport{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	for name, stats := range c.methods {
		outcomes := make(map[string]int64, len(stats.outcomes))
		for k, v := range stats.outcomes {
			outcomes[k] = v
		}
		mr := methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Outcomes:  outcomes,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
		if name == "scenario" {
			result.TotalScenarios = mr.Calls
			result.SuccessScenarios = mr.Success
			result.FailedScenarios = mr.Failed
			result.ErrorRate = mr.ErrorRate
			result.ScenarioLatencyMs = mr.LatencyMs
			continue
		}
		result.Methods[name] = mr
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}
	return result
}

func parseConfig(args []string) (config, error) {
	var (
		cfg       config
		modeValue string
	)

	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.apiURL, "api-url", "http://localhost:3000", "shopping history service URL")
	fs.IntVar(&cfg.total, "total", 400, "total scenarios to execute")
	fs.IntVar(&cfg.concurrency, "concurrency", 20, "number of concurrent workers")
	fs.DurationVar(&cfg.timeout, "timeout", historyclient.DefaultTimeout, "per-request timeout")
	fs.StringVar(&modeValue, "mode", string(modeSave), "load mode: save | save-list | save-list-delete")
	fs.StringVar(&cfg.userTag, "user-tag", "load", "local part prefix of generated @dsce.in emails")
	fs.StringVar(&cfg.productID, "product", "p1", "product id put into every order")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	switch {
	case cfg.total <= 0:
		return cfg, errors.New("total must be > 0")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case strings.TrimSpace(cfg.userTag) == "":
		return cfg, errors.New("user-tag is required")
	case strings.TrimSpace(cfg.productID) == "":
		return cfg, errors.New("product is required")
	}
	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch mode := loadMode(strings.TrimSpace(value)); mode {
	case modeSave, modeSaveList, modeSaveListDelete:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	result := runLoad(context.Background(), cfg, historyclient.NewClient(cfg.apiURL, cfg.timeout))
	printReport(os.Stdout, result, cfg)

	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}
	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

// runLoad прогоняет cfg.total сценариев пулом из cfg.concurrency воркеров.
func runLoad(ctx context.Context, cfg config, remote domain.HistoryRemote) loadReport {
	startedAt := time.Now()
	runID := fmt.Sprintf("%d", startedAt.UnixNano())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				_ = runScenario(ctx, remote, cfg, index, runID, col)
			}
		}()
	}

	for i := 0; i < cfg.total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return col.buildReport(startedAt, time.Since(startedAt))
}

func runScenario(ctx context.Context, remote domain.HistoryRemote, cfg config, index int, runID string, col *collector) (err error) {
	scenarioStart := time.Now()
	defer func() {
		col.record("scenario", time.Since(scenarioStart), err)
	}()

	orderID := fmt.Sprintf("ORDLT%s%05d", runID, index)
	email := fmt.Sprintf("%s-%d@dsce.in", cfg.userTag, index%50)
	record := domain.HistoryRecord{
		ID:        orderID,
		OrderID:   orderID,
		UserEmail: email,
		Items:     []domain.OrderItem{{ProductID: cfg.productID, Quantity: 1 + index%3}},
		Name:      "Load Test",
		Status:    domain.OrderStatusPending,
		PlacedAt:  domain.MillisOf(time.Now()),
	}

	if err := timed(col, "Save", func() error { return remote.Save(ctx, record) }); err != nil {
		return err
	}
	if cfg.mode == modeSave {
		return nil
	}

	if err := timed(col, "ListByOwner", func() error {
		_, err := remote.ListByOwner(ctx, email)
		return err
	}); err != nil {
		return err
	}
	if cfg.mode == modeSaveList {
		return nil
	}

	return timed(col, "Delete", func() error { return remote.Delete(ctx, orderID) })
}

func timed(col *collector, method string, call func() error) error {
	start := time.Now()
	err := call()
	col.record(method, time.Since(start), err)
	return err
}

func writeJSONReport(path string, result loadReport) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}

	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(w io.Writer, result loadReport, cfg config) {
	fmt.Fprintln(w, "Load test summary")
	fmt.Fprintf(w, "mode=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode, result.TotalScenarios, result.SuccessScenarios, result.FailedScenarios, result.ErrorRate)
	fmt.Fprintf(w, "duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Fprintf(w, "scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min, result.ScenarioLatencyMs.Avg, result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95, result.ScenarioLatencyMs.P99, result.ScenarioLatencyMs.Max)

	names := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats := result.Methods[name]
		fmt.Fprintf(w, "%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name, stats.Calls, stats.Success, stats.Failed, stats.ErrorRate, stats.LatencyMs.P95)
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

// percentile — линейная интерполяция между соседними рангами.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}

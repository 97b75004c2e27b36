package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/service/history"
	httpsvc "github.com/DarshanM12/student-ecommerce/internal/service/http"
	"github.com/DarshanM12/student-ecommerce/internal/storage/memory"
	"github.com/DarshanM12/student-ecommerce/internal/storefront/historyclient"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, modeSave, cfg.mode)
	require.Equal(t, 400, cfg.total)

	cfg, err = parseConfig([]string{"-mode=save-list-delete", "-total=10", "-concurrency=2", "-timeout=1s"})
	require.NoError(t, err)
	require.Equal(t, modeSaveListDelete, cfg.mode)
	require.Equal(t, time.Second, cfg.timeout)

	for _, args := range [][]string{
		{"-mode=pay"},
		{"-total=0"},
		{"-concurrency=0"},
		{"-timeout=0s"},
		{"-user-tag= "},
		{"-product="},
		{"-unknown"},
	} {
		_, err := parseConfig(args)
		require.Error(t, err, "%v", args)
	}
}

func TestRunLoad_AgainstHistoryService(t *testing.T) {
	logger := log.WithField("test", "loadtest")
	repo := memory.NewHistoryRepository()
	svc := history.NewService(repo, logger)
	server := httptest.NewServer(httpsvc.NewRouter(httpsvc.NewHandler(svc, logger), logger, nil))
	defer server.Close()

	cfg := config{total: 12, concurrency: 3, timeout: time.Second, mode: modeSaveList, userTag: "lt", productID: "p1"}
	result := runLoad(context.Background(), cfg, historyclient.NewClient(server.URL, cfg.timeout))

	require.Equal(t, int64(12), result.TotalScenarios)
	require.Zero(t, result.FailedScenarios)
	require.Equal(t, int64(12), result.Methods["Save"].Calls)
	require.Equal(t, int64(12), result.Methods["ListByOwner"].Calls)
	require.NotContains(t, result.Methods, "Delete")

	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 12)

	cfg.mode = modeSaveListDelete
	result = runLoad(context.Background(), cfg, historyclient.NewClient(server.URL, cfg.timeout))
	require.Zero(t, result.FailedScenarios)
	require.Equal(t, int64(12), result.Methods["Delete"].Success)

	stored, err = repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 12)

	var out bytes.Buffer
	printReport(&out, result, cfg)
	require.Contains(t, out.String(), "Delete: calls=12")
}

type failingRemote struct{ domain.HistoryRemote }

func (failingRemote) Save(context.Context, domain.HistoryRecord) error {
	return errors.New("down")
}

func TestRunLoad_CountsFailures(t *testing.T) {
	cfg := config{total: 5, concurrency: 2, timeout: time.Second, mode: modeSaveListDelete, userTag: "lt", productID: "p1"}
	result := runLoad(context.Background(), cfg, failingRemote{})

	require.Equal(t, int64(5), result.FailedScenarios)
	require.InDelta(t, 1.0, result.ErrorRate, 1e-9)
	require.Equal(t, int64(5), result.Methods["Save"].Outcomes[outcomeError])
	require.NotContains(t, result.Methods, "ListByOwner")
}

func TestWriteJSONReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	in := loadReport{TotalScenarios: 3, Methods: map[string]methodReport{"Save": {Calls: 3}}}
	require.NoError(t, writeJSONReport(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out loadReport
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, int64(3), out.TotalScenarios)

	require.Error(t, writeJSONReport(".", in))
}

func TestBuildLatencySummary(t *testing.T) {
	require.Equal(t, latencySummary{}, buildLatencySummary(nil))

	s := buildLatencySummary([]float64{4, 1, 3, 2})
	require.Equal(t, 1.0, s.Min)
	require.Equal(t, 4.0, s.Max)
	require.Equal(t, 2.5, s.Avg)
	require.InDelta(t, 2.5, s.P50, 1e-9)
	require.Equal(t, 7.0, percentile([]float64{7}, 99))
}

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
	"github.com/DarshanM12/student-ecommerce/internal/service/history"
	httpsvc "github.com/DarshanM12/student-ecommerce/internal/service/http"
	"github.com/DarshanM12/student-ecommerce/internal/storage/memory"
)

func mapLookup(values map[string]string) envLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestReadClientConfig(t *testing.T) {
	cfg, warnings := readClientConfig(mapLookup(nil))
	require.Empty(t, warnings)
	require.Equal(t, defaultClientConfig(), cfg)

	cfg, warnings = readClientConfig(mapLookup(map[string]string{
		envDB:         " /tmp/store.db ",
		envAPIURL:     "http://history:3000",
		envAPITimeout: "750ms",
		envReportTZ:   "Asia/Kolkata",
	}))
	require.Empty(t, warnings)
	require.Equal(t, clientConfig{
		DBPath:     "/tmp/store.db",
		APIURL:     "http://history:3000",
		APITimeout: 750 * time.Millisecond,
		ReportTZ:   "Asia/Kolkata",
	}, cfg)

	cfg, warnings = readClientConfig(mapLookup(map[string]string{envAPITimeout: "-1s"}))
	require.Len(t, warnings, 1)
	require.Equal(t, defaultClientConfig().APITimeout, cfg.APITimeout)

	_, warnings = readClientConfig(mapLookup(map[string]string{envAPITimeout: "soon"}))
	require.Len(t, warnings, 1)
}

// harness запускает команды против временной базы и настоящего сервиса истории.
type harness struct {
	t      *testing.T
	env    envLookup
	server *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := log.WithField("test", t.Name())
	svc := history.NewService(memory.NewHistoryRepository(), logger)
	server := httptest.NewServer(httpsvc.NewRouter(httpsvc.NewHandler(svc, logger), logger, nil))
	t.Cleanup(server.Close)

	return &harness{
		t:      t,
		server: server,
		env: mapLookup(map[string]string{
			envDB:         filepath.Join(t.TempDir(), "storefront.db"),
			envAPIURL:     server.URL,
			envAPITimeout: "2s",
			envReportTZ:   "UTC",
		}),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), h.env, args, &out)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "storefront %s", strings.Join(args, " "))
	return out
}

func TestVersionRunsOffline(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), mapLookup(map[string]string{envDB: "/dev/null/impossible/db"}), []string{"version"}, &out)
	require.NoError(t, err)
	require.NotEmpty(t, out.String())
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t)

	require.Contains(t, h.mustRun("whoami"), "Not logged in")

	_, err := h.run("login", "someone@gmail.com")
	require.ErrorContains(t, err, "only @dsce.in")

	require.Contains(t, h.mustRun("login", "student@dsce.in"), "Login successful")
	require.Equal(t, "student@dsce.in\n", h.mustRun("whoami"))

	h.mustRun("login", "admin@dsce.in")
	require.Contains(t, h.mustRun("whoami"), "(admin)")

	h.mustRun("logout")
	require.Contains(t, h.mustRun("whoami"), "Not logged in")
}

func TestProductsAndCart(t *testing.T) {
	h := newHarness(t)

	require.Contains(t, h.mustRun("products", "list", "--category", "snacks"), "Juice Box (Mixed)")
	require.Contains(t, h.mustRun("products", "search", "racket"), "p13")
	require.Contains(t, h.mustRun("products", "categories"), "Lab Materials")

	h.mustRun("cart", "add", "p1")
	h.mustRun("cart", "add", "p1")
	require.Contains(t, h.mustRun("cart", "add", "p3"), "Cart items: 3")

	_, err := h.run("cart", "add", "p999")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	require.Contains(t, h.mustRun("cart", "show"), "Total: ₹290")
	require.Contains(t, h.mustRun("cart", "inc", "p3"), "Cart items: 4")
	require.Contains(t, h.mustRun("cart", "dec", "p1"), "Cart items: 3")
	require.Contains(t, h.mustRun("cart", "remove", "p3"), "Cart items: 1")
	require.Contains(t, h.mustRun("cart", "clear"), "Cart items: 0")
	require.Contains(t, h.mustRun("cart", "show"), "Cart is empty.")

	// правка каталога только для администратора
	h.mustRun("login", "student@dsce.in")
	_, err = h.run("products", "add", "--name", "Marker", "--price", "20")
	require.ErrorIs(t, err, errAdminRequired)

	h.mustRun("login", "admin@dsce.in")
	out := h.mustRun("products", "add", "--name", "Marker", "--price", "20", "--category", "stationery")
	id := strings.TrimSpace(strings.TrimPrefix(out, "Product added:"))
	h.mustRun("products", "update", id, "--price", "25")
	require.Contains(t, h.mustRun("products", "search", "marker"), "₹25")
	h.mustRun("products", "delete", id)
	require.Contains(t, h.mustRun("products", "search", "marker"), "No products found.")

	_, err = h.run("products", "update", "missing", "--price", "1")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

var orderIDPattern = regexp.MustCompile(`Order placed: (ORD\d+[0-9A-F]{5})`)

func TestOrderLifecycleWithHistoryService(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("orders", "place", "--name", "Asha", "--phone", "999", "--address", "Hostel B")
	require.ErrorIs(t, err, errLoginRequired)

	h.mustRun("login", "student@dsce.in")
	_, err = h.run("orders", "place", "--name", "Asha", "--phone", "999", "--address", "Hostel B")
	require.ErrorIs(t, err, domain.ErrCartEmpty)

	h.mustRun("cart", "add", "p1")
	h.mustRun("cart", "add", "p1")
	h.mustRun("cart", "add", "p3")
	out := h.mustRun("orders", "place", "--name", "Asha", "--phone", "999", "--address", "Hostel B", "--notes", "Leave at desk")
	m := orderIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	orderID := m[1]

	require.Contains(t, h.mustRun("orders", "list"), orderID)
	require.Contains(t, h.mustRun("history", "show"), orderID)

	// репликация завершилась до выхода из команды: запись уже в сервисе
	h.mustRun("login", "admin@dsce.in")
	require.Contains(t, h.mustRun("history", "all"), orderID)
	require.Contains(t, h.mustRun("orders", "dashboard"), "Pending orders: 1")
	require.Contains(t, h.mustRun("orders", "deliver", orderID), "Order delivered")
	require.Contains(t, h.mustRun("orders", "sales"), "Total sales: ₹290")

	h.mustRun("login", "student@dsce.in")
	_, err = h.run("orders", "cancel", orderID)
	require.ErrorContains(t, err, "already delivered")
	_, err = h.run("orders", "sales")
	require.ErrorIs(t, err, errAdminRequired)

	dir := t.TempDir()
	out = h.mustRun("history", "export", "--dir", dir)
	require.Contains(t, out, "History exported:")
	files, err := filepath.Glob(filepath.Join(dir, "shopping-history-student-at-dsce.in-*.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.Contains(t, string(body), "Order ID: "+orderID)
	require.Contains(t, string(body), "Order Total: ₹290")
	require.Contains(t, string(body), "Notes: Leave at desk")

	h.mustRun("login", "admin@dsce.in")
	require.Contains(t, h.mustRun("history", "delete", orderID), "History record deleted")
	_, err = h.run("history", "delete", orderID)
	require.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

func TestOrderCancelWithinWindow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "student@dsce.in")
	h.mustRun("cart", "add", "p2")

	out := h.mustRun("orders", "place", "--name", "Asha", "--phone", "999", "--address", "Hostel B")
	orderID := orderIDPattern.FindStringSubmatch(out)[1]

	require.Contains(t, h.mustRun("orders", "cancel", orderID), "Order cancelled")
	require.Contains(t, h.mustRun("orders", "list"), "No orders found.")
	require.Contains(t, h.mustRun("history", "show"), "CANCELLED")

	_, err := h.run("orders", "cancel", orderID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	h.mustRun("login", "admin@dsce.in")
	out = h.mustRun("orders", "cancellations")
	require.Contains(t, out, orderID)
	require.Contains(t, out, "₹25")
}

func TestHistoryExport_NoHistory(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "student@dsce.in")
	require.Contains(t, h.mustRun("history", "export", "--dir", t.TempDir()), "No history to export")
}

//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "dessert-delivery-api"
	ConsumerName = "sepay-gateway"

	StateOrderAwaitingPayment = "order DH-1699401234567-x7k2p9qa1 awaits a 150000 VND transfer"
	StateNoOrders             = "no orders exist"
)

const (
	APIKey          = "thanhToanTrucTuyen"
	VirtualAccount  = "VQRQAFFXT3481"
	AwaitingOrderID = "DH-1699401234567-x7k2p9qa1"
	OrderAmount     = 150000
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the gateway consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleNotification is a transfer notification as Sepay delivers it.
func ExampleNotification(content string, amount int) map[string]any {
	return map[string]any{
		"id":              92704,
		"gateway":         "MBBank",
		"transactionDate": "2024-07-25 14:02:37",
		"accountNumber":   "0123499999",
		"subAccount":      VirtualAccount,
		"code":            nil,
		"content":         content,
		"transferType":    "in",
		"transferAmount":  amount,
		"accumulated":     19077000,
		"referenceCode":   "MBVCB.3278907687",
		"description":     "",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

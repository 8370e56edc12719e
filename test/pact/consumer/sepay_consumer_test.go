//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/dessert-delivery-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type acknowledgement struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

func TestSepayGatewayContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	authorization := "Apikey " + pacttest.APIKey
	settling := pacttest.ExampleNotification("CT tu NGUYEN VAN A DH1699401234567x7k2p9qa1", pacttest.OrderAmount)
	unmatched := pacttest.ExampleNotification("CT tu NGUYEN VAN A DH-1700000000000-zzzzzzzzz", pacttest.OrderAmount)
	malformed := pacttest.ExampleNotification("", pacttest.OrderAmount)

	pact.AddInteraction().
		Given(pacttest.StateOrderAwaitingPayment).
		UponReceiving("a transfer notification that settles an order").
		WithRequest("POST", "/payment/webhook/sepay", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S(authorization))
			b.JSONBody(settling)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success":       matchers.Like(true),
				"message":       matchers.S("Payment processed successfully"),
				"orderId":       matchers.S(pacttest.AwaitingOrderID),
				"transactionId": matchers.S("92704"),
				"amount":        matchers.Like(pacttest.OrderAmount),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a transfer notification for an unknown order").
		WithRequest("POST", "/payment/webhook/sepay", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S(authorization))
			b.JSONBody(unmatched)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success":    matchers.Like(false),
				"message":    matchers.S("Order not found"),
				"searchedId": matchers.Like("DH-1700000000000-zzzzzzzzz"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a transfer notification without content").
		WithRequest("POST", "/payment/webhook/sepay", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S(authorization))
			b.JSONBody(malformed)
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(false),
				"message": matchers.S("Invalid webhook data"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a transfer notification with a wrong api key").
		WithRequest("POST", "/payment/webhook/sepay", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S("Apikey wrong-key"))
			b.JSONBody(settling)
		}).
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"success": matchers.Like(false)})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newGatewayClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ack, status, err := client.Notify(ctx, authorization, settling)
		if err != nil {
			return fmt.Errorf("settling notification: %w", err)
		}
		if status != http.StatusOK || !ack.Success || ack.OrderID != pacttest.AwaitingOrderID {
			return fmt.Errorf("unexpected settlement acknowledgement %d %+v", status, ack)
		}

		ack, status, err = client.Notify(ctx, authorization, unmatched)
		if err != nil {
			return fmt.Errorf("unmatched notification: %w", err)
		}
		if status != http.StatusOK || ack.Success {
			return fmt.Errorf("expected unmatched notification to be acknowledged, got %d %+v", status, ack)
		}

		if _, status, err = client.Notify(ctx, authorization, malformed); err != nil {
			return fmt.Errorf("malformed notification: %w", err)
		} else if status != http.StatusBadRequest {
			return fmt.Errorf("expected 400 for malformed notification, got %d", status)
		}

		if _, status, err = client.Notify(ctx, "Apikey wrong-key", settling); err != nil {
			return fmt.Errorf("unauthorized notification: %w", err)
		} else if status != http.StatusUnauthorized {
			return fmt.Errorf("expected 401 for wrong api key, got %d", status)
		}
		return nil
	})
	require.NoError(t, err)
}

type gatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

func newGatewayClient(config pactconsumer.MockServerConfig) *gatewayClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &gatewayClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

// Notify delivers one notification the way the gateway does and decodes the acknowledgement.
func (c *gatewayClient) Notify(ctx context.Context, authorization string, notification map[string]any) (*acknowledgement, int, error) {
	body, err := json.Marshal(notification)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment/webhook/sepay", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	var ack acknowledgement
	if err := json.NewDecoder(res.Body).Decode(&ack); err != nil {
		return nil, res.StatusCode, err
	}
	return &ack, res.StatusCode, nil
}

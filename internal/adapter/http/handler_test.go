package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/key-value/banktransfer/internal/adapter/eventstore/memory"
	"github.com/key-value/banktransfer/internal/bus"
	"github.com/key-value/banktransfer/internal/domain"
	"github.com/key-value/banktransfer/internal/usecase/bank"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()

	b := bus.New(store, log)
	b.Register(domain.KindAccount, func(id uuid.UUID) domain.Aggregate {
		return domain.NewAccount(id)
	})
	b.Register(domain.KindDeposit, func(id uuid.UUID) domain.Aggregate {
		return domain.NewDepositTransaction(id)
	})
	b.Register(domain.KindTransfer, func(id uuid.UUID) domain.Aggregate {
		return domain.NewTransferTransaction(id)
	})

	app := fiber.New()
	NewHandler(bank.NewService(b, store), log).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func openAccount(t *testing.T, app *fiber.App, owner string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/v1/accounts", fiber.Map{"owner": owner})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := body["account_id"].(string)
	require.True(t, ok)
	return id
}

func TestHandler_OpenAccount(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/v1/accounts", fiber.Map{"owner": "alice"})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := body["account_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestHandler_OpenAccount_BadRequest(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "Missing owner", body: fiber.Map{}},
		{name: "Empty owner", body: fiber.Map{"owner": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/v1/accounts", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandler_GetAccount(t *testing.T) {
	app := newTestApp(t)
	id := openAccount(t, app, "alice")

	resp, body := doJSON(t, app, http.MethodGet, "/v1/accounts/"+id, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "alice", body["owner"])
}

func TestHandler_GetAccount_NotFound(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/v1/accounts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/v1/accounts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_DepositAndWithdraw(t *testing.T) {
	app := newTestApp(t)
	id := openAccount(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/deposit", id), fiber.Map{"amount": "500"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/withdraw", id), fiber.Map{"amount": "200"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/v1/accounts/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "300", body["balance"])
}

func TestHandler_Deposit_Invalid(t *testing.T) {
	app := newTestApp(t)
	id := openAccount(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/deposit", id), fiber.Map{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/deposit", uuid.NewString()), fiber.Map{"amount": "100"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_StartTransfer(t *testing.T) {
	app := newTestApp(t)
	source := openAccount(t, app, "alice")
	target := openAccount(t, app, "bob")

	resp, body := doJSON(t, app, http.MethodPost, "/v1/transfers", fiber.Map{
		"source_account_id": source,
		"target_account_id": target,
		"amount":            "300",
	})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	txID, ok := body["transaction_id"].(string)
	require.True(t, ok)

	resp, body = doJSON(t, app, http.MethodGet, "/v1/transfers/"+txID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(domain.StatusStarted), body["status"])
}

func TestHandler_StartTransfer_BadRequest(t *testing.T) {
	app := newTestApp(t)
	id := uuid.NewString()

	tests := []struct {
		name string
		body fiber.Map
	}{
		{
			name: "Same source and target",
			body: fiber.Map{"source_account_id": id, "target_account_id": id, "amount": "100"},
		},
		{
			name: "Non-positive amount",
			body: fiber.Map{"source_account_id": uuid.NewString(), "target_account_id": uuid.NewString(), "amount": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/v1/transfers", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandler_StartDeposit(t *testing.T) {
	app := newTestApp(t)
	id := openAccount(t, app, "alice")

	resp, body := doJSON(t, app, http.MethodPost, "/v1/deposits", fiber.Map{
		"account_id": id,
		"amount":     "1000",
	})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	txID, ok := body["transaction_id"].(string)
	require.True(t, ok)

	resp, body = doJSON(t, app, http.MethodGet, "/v1/deposits/"+txID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["account_id"])
}

func TestHandler_GetTransfer_NotFound(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/v1/transfers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

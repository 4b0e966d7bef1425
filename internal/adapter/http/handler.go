// Package http exposes the banking operations over a fiber HTTP API.
// Saga-starting endpoints answer 202 with the transaction id; the saga
// completes asynchronously and its state is polled via the GET endpoints.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/key-value/banktransfer/internal/domain"
	"github.com/key-value/banktransfer/internal/usecase/bank"
)

// Handler holds the HTTP handlers for the banking API
type Handler struct {
	svc *bank.Service
	log zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc *bank.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "http").Logger()}
}

// Register mounts the API routes on the app
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/v1")

	api.Post("/accounts", h.OpenAccount)
	api.Get("/accounts/:id", h.GetAccount)
	api.Post("/accounts/:id/deposit", h.Deposit)
	api.Post("/accounts/:id/withdraw", h.Withdraw)

	api.Post("/deposits", h.StartDeposit)
	api.Get("/deposits/:id", h.GetDeposit)
	api.Post("/transfers", h.StartTransfer)
	api.Get("/transfers/:id", h.GetTransfer)
}

// OpenAccountRequest is the payload for creating an account
type OpenAccountRequest struct {
	Owner string `json:"owner"`
}

// OpenAccount handles POST /v1/accounts
func (h *Handler) OpenAccount(c *fiber.Ctx) error {
	var req OpenAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Owner == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "owner is required"})
	}

	id, err := h.svc.OpenAccount(c.Context(), req.Owner)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open account")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not open account"})
	}

	h.log.Info().Str("account_id", id.String()).Str("owner", req.Owner).Msg("account opened")
	return c.Status(http.StatusCreated).JSON(fiber.Map{"account_id": id})
}

// GetAccount handles GET /v1/accounts/:id
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid account id"})
	}

	view, err := h.svc.GetAccount(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		h.log.Error().Err(err).Msg("failed to load account")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not load account"})
	}
	return c.JSON(view)
}

// AmountRequest is the payload for direct deposits and withdrawals
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Deposit handles POST /v1/accounts/:id/deposit
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.directMovement(c, h.svc.Deposit)
}

// Withdraw handles POST /v1/accounts/:id/withdraw
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.directMovement(c, h.svc.Withdraw)
}

func (h *Handler) directMovement(c *fiber.Ctx, op func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid account id"})
	}
	var req AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
	}

	if err := op(c.Context(), id, req.Amount); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "account not found"})
		}
		h.log.Error().Err(err).Msg("failed to apply balance movement")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not apply movement"})
	}
	return c.SendStatus(http.StatusAccepted)
}

// StartDepositRequest is the payload for starting a deposit transaction
type StartDepositRequest struct {
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// StartDeposit handles POST /v1/deposits
func (h *Handler) StartDeposit(c *fiber.Ctx) error {
	var req StartDepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
	}

	txID, err := h.svc.StartDeposit(c.Context(), req.AccountID, req.Amount)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to start deposit")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not start deposit"})
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"transaction_id": txID})
}

// GetDeposit handles GET /v1/deposits/:id
func (h *Handler) GetDeposit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}
	view, err := h.svc.GetDeposit(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
		}
		h.log.Error().Err(err).Msg("failed to load deposit")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not load deposit"})
	}
	return c.JSON(view)
}

// StartTransferRequest is the payload for starting a transfer transaction
type StartTransferRequest struct {
	SourceAccountID uuid.UUID       `json:"source_account_id"`
	TargetAccountID uuid.UUID       `json:"target_account_id"`
	Amount          decimal.Decimal `json:"amount"`
}

// StartTransfer handles POST /v1/transfers
func (h *Handler) StartTransfer(c *fiber.Ctx) error {
	var req StartTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
	}
	if req.SourceAccountID == req.TargetAccountID {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "source and target account must differ"})
	}

	txID, err := h.svc.StartTransfer(c.Context(), req.SourceAccountID, req.TargetAccountID, req.Amount)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to start transfer")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not start transfer"})
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"transaction_id": txID})
}

// GetTransfer handles GET /v1/transfers/:id
func (h *Handler) GetTransfer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}
	view, err := h.svc.GetTransfer(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
		}
		h.log.Error().Err(err).Msg("failed to load transfer")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not load transfer"})
	}
	return c.JSON(view)
}

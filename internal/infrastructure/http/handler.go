package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"custodia.io/internal/application/usecase"
	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
	"custodia.io/internal/infrastructure/metrics"
)

const defaultReceiptLimit = 50

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	dispatch       *usecase.DispatchUseCase
	withdrawNative *usecase.WithdrawNativeUseCase
	withdrawToken  *usecase.WithdrawTokenUseCase
	balances       *usecase.CustodyBalanceUseCase
	receipts       *usecase.ListReceiptsUseCase
	verifier       port.CallVerifier
	metrics        *metrics.Metrics
	logger         logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	dispatch *usecase.DispatchUseCase,
	withdrawNative *usecase.WithdrawNativeUseCase,
	withdrawToken *usecase.WithdrawTokenUseCase,
	balances *usecase.CustodyBalanceUseCase,
	receipts *usecase.ListReceiptsUseCase,
	verifier port.CallVerifier,
	m *metrics.Metrics,
	log logger.Logger,
) *Handler {
	return &Handler{
		dispatch:       dispatch,
		withdrawNative: withdrawNative,
		withdrawToken:  withdrawToken,
		balances:       balances,
		receipts:       receipts,
		verifier:       verifier,
		metrics:        m,
		logger:         log,
	}
}

type inboundRequest struct {
	Amount  string `json:"amount"`
	Payload string `json:"payload"`
}

type withdrawTokenRequest struct {
	Token string `json:"token"`
}

// HandleInbound handles POST /inbound requests: the receive path for
// empty payloads, dispatch for registered operation names, and the
// fallback deposit for everything else.
func (h *Handler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		requestLogger.LogError(ctx, "Failed to read request body", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	caller, err := h.verifier.Verify(ctx, r, body)
	if err != nil {
		requestLogger.LogWarning(ctx, "Call verification failed", "error", err.Error())
		h.metrics.Failures.WithLabelValues("unauthenticated").Inc()
		http.Error(w, "Verification failed: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req inboundRequest
	if err := json.Unmarshal(body, &req); err != nil {
		requestLogger.LogError(ctx, "Failed to parse JSON body", err)
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil {
			http.Error(w, "Invalid amount", http.StatusBadRequest)
			return
		}
	}

	call := entity.InboundCall{
		Sender:  caller,
		Amount:  amount,
		Payload: []byte(req.Payload),
	}

	result, err := h.dispatch.Execute(ctx, call)
	if err != nil {
		requestLogger.LogError(ctx, "Inbound call failed", err,
			"sender", string(caller))
		h.writeError(w, err)
		return
	}

	response := map[string]string{"status": "ok"}
	switch {
	case result.Matched != "":
		h.metrics.Operations.WithLabelValues(result.Matched).Inc()
		response["operation"] = result.Matched
	case result.Receipt != nil:
		path := "receive"
		if result.Receipt.HadPayload {
			path = "fallback"
		}
		h.metrics.Deposits.WithLabelValues(path).Inc()
		response["receipt_id"] = result.Receipt.ID
	}

	h.writeJSON(w, http.StatusOK, response)

	requestLogger.LogInfo(ctx, "Inbound call processed",
		"sender", string(caller),
		"amount", amount.String(),
		"matched", result.Matched)
}

// HandleWithdrawNative handles POST /withdrawals/native requests.
func (h *Handler) HandleWithdrawNative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	caller, err := h.verifier.Verify(ctx, r, body)
	if err != nil {
		h.metrics.Failures.WithLabelValues("unauthenticated").Inc()
		http.Error(w, "Verification failed: "+err.Error(), http.StatusUnauthorized)
		return
	}

	amount, err := h.withdrawNative.Execute(ctx, caller)
	if err != nil {
		requestLogger.LogError(ctx, "Native withdrawal failed", err,
			"caller", string(caller))
		h.writeError(w, err)
		return
	}

	h.metrics.Withdrawals.WithLabelValues("native").Inc()
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"amount": amount.String(),
	})
}

// HandleWithdrawToken handles POST /withdrawals/token requests.
func (h *Handler) HandleWithdrawToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	caller, err := h.verifier.Verify(ctx, r, body)
	if err != nil {
		h.metrics.Failures.WithLabelValues("unauthenticated").Inc()
		http.Error(w, "Verification failed: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req withdrawTokenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	amount, err := h.withdrawToken.Execute(ctx, caller, req.Token)
	if err != nil {
		requestLogger.LogError(ctx, "Token withdrawal failed", err,
			"caller", string(caller),
			"token", req.Token)
		h.writeError(w, err)
		return
	}

	h.metrics.Withdrawals.WithLabelValues("token").Inc()
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"token":  req.Token,
		"amount": amount.String(),
	})
}

// HandleBalance handles GET /balances/{asset} requests, where asset is
// "native" or a token id.
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	asset := strings.TrimPrefix(r.URL.Path, "/balances/")
	if asset == "" || asset == r.URL.Path {
		http.Error(w, "Missing asset parameter", http.StatusBadRequest)
		return
	}

	var (
		balance decimal.Decimal
		err     error
	)
	if asset == "native" {
		balance, err = h.balances.Native(ctx)
	} else {
		balance, err = h.balances.Token(ctx, asset)
	}
	if err != nil {
		requestLogger.LogError(ctx, "Failed to read balance", err, "asset", asset)
		http.Error(w, "Failed to read balance", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"asset":   asset,
		"balance": balance.String(),
	})
}

// HandleReceipts handles GET /receipts requests.
func (h *Handler) HandleReceipts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultReceiptLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	receipts, err := h.receipts.Execute(ctx, limit)
	if err != nil {
		requestLogger.LogError(ctx, "Failed to list receipts", err)
		http.Error(w, "Failed to list receipts", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP statuses. Every failure aborts
// the whole call, so the status is the only thing the caller needs.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		h.metrics.Failures.WithLabelValues("unauthorized").Inc()
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, entity.ErrZeroValue),
		errors.Is(err, entity.ErrMissingSender),
		errors.Is(err, entity.ErrNegativeAmount):
		h.metrics.Failures.WithLabelValues("invalid_call").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entity.ErrTransferFailed):
		h.metrics.Failures.WithLabelValues("transfer_failed").Inc()
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		h.metrics.Failures.WithLabelValues("internal").Inc()
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	wrap := func(next http.HandlerFunc) http.HandlerFunc {
		return RequestIDMiddleware(LoggingMiddleware(next, h.logger), h.logger)
	}

	mux.HandleFunc("/inbound", wrap(h.HandleInbound))
	mux.HandleFunc("/withdrawals/native", wrap(h.HandleWithdrawNative))
	mux.HandleFunc("/withdrawals/token", wrap(h.HandleWithdrawToken))
	mux.HandleFunc("/balances/", wrap(h.HandleBalance))
	mux.HandleFunc("/receipts", wrap(h.HandleReceipts))
	mux.Handle("/metrics", h.metrics.Handler())

	return mux
}

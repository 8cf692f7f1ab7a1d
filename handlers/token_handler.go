package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/services"
)

// TokenHandler lida com requisições HTTP do token de plataforma.
type TokenHandler struct {
	Service *services.TokenService
}

// NewTokenHandler cria uma nova instância do handler do token de plataforma.
func NewTokenHandler(s *services.TokenService) *TokenHandler {
	return &TokenHandler{Service: s}
}

// Initialize cria o singleton do token de plataforma.
// POST /token/initialize
func (h *TokenHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Authority   string `json:"authority"`
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		URI         string `json:"uri"`
		MintAddress string `json:"mint_address"`
		TotalSupply uint64 `json:"total_supply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	authority, err := solana.PublicKeyFromBase58(req.Authority)
	if err != nil {
		http.Error(w, fmt.Sprintf("autoridade inválida: %v", err), http.StatusBadRequest)
		return
	}

	token, err := h.Service.Initialize(
		authority, req.Name, req.Symbol, req.URI, req.MintAddress,
		req.TotalSupply, time.Now().UTC(),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(token)
}

// GetToken obtém o registro singleton do token de plataforma.
// GET /token
func (h *TokenHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	token, found, err := h.Service.GetPlatformToken()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		http.Error(w, "Token de plataforma não inicializado", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(token)
}

// TransferAuthority nomeia o sucessor da autoridade do token.
// POST /token/transfer-authority
func (h *TokenHandler) TransferAuthority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller       string `json:"caller"`
		NewAuthority string `json:"new_authority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := solana.PublicKeyFromBase58(req.Caller)
	if err != nil {
		http.Error(w, fmt.Sprintf("chamador inválido: %v", err), http.StatusBadRequest)
		return
	}
	newAuthority, err := solana.PublicKeyFromBase58(req.NewAuthority)
	if err != nil {
		http.Error(w, fmt.Sprintf("sucessor inválido: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.TransferAuthority(caller, newAuthority, time.Now().UTC()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptAuthority completa a transferência de autoridade em duas etapas.
// POST /token/accept-authority
func (h *TokenHandler) AcceptAuthority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := solana.PublicKeyFromBase58(req.Caller)
	if err != nil {
		http.Error(w, fmt.Sprintf("chamador inválido: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.AcceptAuthority(caller, time.Now().UTC()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFees atualiza a configuração de taxas do token.
// PUT /token/fees
func (h *TokenHandler) UpdateFees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller            string `json:"caller"`
		TransactionFeeBps uint16 `json:"transaction_fee_bps"`
		FeeRecipient      string `json:"fee_recipient"`
		FeesEnabled       bool   `json:"fees_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := solana.PublicKeyFromBase58(req.Caller)
	if err != nil {
		http.Error(w, fmt.Sprintf("chamador inválido: %v", err), http.StatusBadRequest)
		return
	}

	fee := models.FeeConfig{
		TransactionFeeBps: req.TransactionFeeBps,
		FeeRecipient:      req.FeeRecipient,
		FeesEnabled:       req.FeesEnabled,
	}
	if err := h.Service.UpdateFeeConfig(caller, fee, time.Now().UTC()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPause liga ou desliga a pausa global de transferências.
// PUT /token/pause
func (h *TokenHandler) SetPause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Paused bool   `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := solana.PublicKeyFromBase58(req.Caller)
	if err != nil {
		http.Error(w, fmt.Sprintf("chamador inválido: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetTransferPause(caller, req.Paused, time.Now().UTC()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

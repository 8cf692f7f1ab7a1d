package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"

	"github.com/realstackxyz/realstack/services"
)

// AssetHandler lida com requisições HTTP do registro de ativos.
type AssetHandler struct {
	Service *services.AssetService
}

// NewAssetHandler cria uma nova instância do handler de ativos.
func NewAssetHandler(s *services.AssetService) *AssetHandler {
	return &AssetHandler{Service: s}
}

// CreateAsset registra um novo ativo tokenizado.
// POST /assets
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Authority   string `json:"authority"`
		MintAddress string `json:"mint_address"`
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		Category    string `json:"category"`
		Description string `json:"description"`
		URI         string `json:"uri"`
		Valuation   uint64 `json:"valuation"`
		TotalShares uint64 `json:"total_shares"`
		SharePrice  uint64 `json:"share_price"`
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

	asset, err := h.Service.CreateAssetToken(
		authority, req.MintAddress,
		req.Name, req.Symbol, req.Category, req.Description, req.URI,
		req.Valuation, req.TotalShares, req.SharePrice,
		time.Now().UTC(),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(asset)
}

// GetAssetByID obtém um ativo pelo ID.
// GET /assets/{id}
func (h *AssetHandler) GetAssetByID(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")
	if assetID == "" {
		http.Error(w, "ID do ativo é obrigatório", http.StatusBadRequest)
		return
	}

	asset, found, err := h.Service.GetAsset(assetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		http.Error(w, "Ativo não encontrado", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// ListAssets lista todos os ativos registrados.
// GET /assets
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.Service.ListAssets()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}

// UpdateValuation sobrescreve avaliação e preço da fração de um ativo.
// PUT /assets/{id}/valuation
func (h *AssetHandler) UpdateValuation(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	var req struct {
		Caller     string `json:"caller"`
		Valuation  uint64 `json:"valuation"`
		SharePrice uint64 `json:"share_price"`
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

	asset, err := h.Service.UpdateAssetValuation(caller, assetID, req.Valuation, req.SharePrice, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// VerifyAsset registra a verificação do ativo.
// POST /assets/{id}/verify
func (h *AssetHandler) VerifyAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	var req struct {
		Verifier string `json:"verifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	verifier, err := solana.PublicKeyFromBase58(req.Verifier)
	if err != nil {
		http.Error(w, fmt.Sprintf("verificador inválido: %v", err), http.StatusBadRequest)
		return
	}

	asset, err := h.Service.VerifyAsset(verifier, assetID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// SetTradability ajusta a negociabilidade do ativo.
// PUT /assets/{id}/tradability
func (h *AssetHandler) SetTradability(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	var req struct {
		Caller     string `json:"caller"`
		IsTradable bool   `json:"is_tradable"`
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

	asset, err := h.Service.ToggleTradability(caller, assetID, req.IsTradable, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// BurnAsset desativa o ativo em definitivo.
// POST /assets/{id}/burn
func (h *AssetHandler) BurnAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

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

	asset, err := h.Service.BurnAssetToken(caller, assetID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// DistributeIncome registra a contabilidade de uma distribuição de renda.
// POST /assets/{id}/income
func (h *AssetHandler) DistributeIncome(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	var req struct {
		Caller string `json:"caller"`
		Amount uint64 `json:"amount"`
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

	asset, err := h.Service.DistributeIncome(caller, assetID, req.Amount, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// PreparePayoutResponse carrega a transação de pagamento serializada em
// Base64 para assinatura pelo pagador.
type PreparePayoutResponse struct {
	SerializedTransaction string `json:"serialized_transaction"`
}

// PrepareIncomePayout constrói a transação SPL do pagamento de renda de um
// detentor, sem assiná-la com a chave do pagador.
// POST /assets/{id}/income/prepare-payout
func (h *AssetHandler) PrepareIncomePayout(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")

	var req struct {
		Caller    string `json:"caller"`
		Recipient string `json:"recipient"`
		Amount    uint64 `json:"amount"`
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

	serializedTx, err := h.Service.PrepareIncomePayout(caller, assetID, req.Recipient, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PreparePayoutResponse{SerializedTransaction: serializedTx})
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"

	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/services"
)

// GovernanceHandler lida com requisições HTTP do motor de governança.
type GovernanceHandler struct {
	Service *services.GovernanceService
}

// NewGovernanceHandler cria uma nova instância do handler de governança.
func NewGovernanceHandler(s *services.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{Service: s}
}

// InitConfig cria o singleton de configuração de governança.
// POST /governance/config
func (h *GovernanceHandler) InitConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Authority string `json:"authority"`
		services.GovernanceParams
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

	cfg, err := h.Service.InitGovernance(authority, req.GovernanceParams, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cfg)
}

// UpdateConfig sobrescreve os parâmetros de governança.
// PUT /governance/config
func (h *GovernanceHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		services.GovernanceParams
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

	cfg, err := h.Service.UpdateGovernanceConfig(caller, req.GovernanceParams, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// GetConfig obtém o singleton de configuração de governança.
// GET /governance/config
func (h *GovernanceHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, found, err := h.Service.GetConfig()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		http.Error(w, "Governança não inicializada", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// CreateProposal cria uma nova proposta de governança.
// POST /proposals
func (h *GovernanceHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Proposer     string    `json:"proposer"`
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		VotingEndsAt time.Time `json:"voting_ends_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	proposer, err := solana.PublicKeyFromBase58(req.Proposer)
	if err != nil {
		http.Error(w, fmt.Sprintf("proponente inválido: %v", err), http.StatusBadRequest)
		return
	}

	proposal, err := h.Service.CreateProposal(proposer, req.Title, req.Description, req.VotingEndsAt, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(proposal)
}

// GetProposalByID obtém uma proposta pelo ID.
// GET /proposals/{id}
func (h *GovernanceHandler) GetProposalByID(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "id")

	proposal, found, err := h.Service.GetProposal(proposalID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		http.Error(w, "Proposta não encontrada", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(proposal)
}

// ListProposals lista todas as propostas.
// GET /proposals
func (h *GovernanceHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.Service.ListProposals()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(proposals)
}

// Vote registra o voto de um eleitor em uma proposta.
// POST /proposals/{id}/votes
func (h *GovernanceHandler) Vote(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "id")

	var req struct {
		Voter      string `json:"voter"`
		IsYesVote  bool   `json:"is_yes_vote"`
		VoteWeight uint64 `json:"vote_weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	voter, err := solana.PublicKeyFromBase58(req.Voter)
	if err != nil {
		http.Error(w, fmt.Sprintf("eleitor inválido: %v", err), http.StatusBadRequest)
		return
	}

	vote, err := h.Service.VoteOnProposal(voter, proposalID, req.IsYesVote, req.VoteWeight, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vote)
}

// ListVotes lista os votos de uma proposta.
// GET /proposals/{id}/votes
func (h *GovernanceHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "id")

	votes, err := h.Service.ListVotes(proposalID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(votes)
}

// ExecuteProposalResponse devolve a proposta finalizada e o veredito da
// apuração.
type ExecuteProposalResponse struct {
	Proposal models.Proposal `json:"proposal"`
	Approved bool            `json:"approved"`
}

// ExecuteProposal apura e consome a tentativa de execução de uma proposta.
// POST /proposals/{id}/execute
func (h *GovernanceHandler) ExecuteProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "id")

	var req struct {
		Executor string `json:"executor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	executor, err := solana.PublicKeyFromBase58(req.Executor)
	if err != nil {
		http.Error(w, fmt.Sprintf("executor inválido: %v", err), http.StatusBadRequest)
		return
	}

	proposal, approved, err := h.Service.ExecuteProposal(executor, proposalID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExecuteProposalResponse{Proposal: proposal, Approved: approved})
}

package services

import (
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/realstackxyz/realstack/apperrors"
	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/storage"
)

// GovernanceStore é o contrato de persistência do motor de governança.
type GovernanceStore interface {
	SaveGovernanceConfig(cfg models.GovernanceConfig) error
	UpdateGovernanceConfig(cfg models.GovernanceConfig) error
	GetGovernanceConfig() (models.GovernanceConfig, bool, error)
	SaveProposal(p models.Proposal) error
	GetProposal(id string) (models.Proposal, bool, error)
	ListProposals() ([]models.Proposal, error)
	RecordVote(vote models.VoteRecord) error
	ListVotes(proposalID string) ([]models.VoteRecord, error)
	FinalizeProposal(id, executor string, now time.Time) (bool, error)
}

// ProposalEffect é o gancho de execução de um tipo de proposta aprovada.
// O núcleo só define o caso Text (no-op); os demais tipos são pontos de
// extensão registrados pelo deployment.
type ProposalEffect func(p models.Proposal) error

// GovernanceParams agrupa os parâmetros mutáveis da configuração de
// governança.
type GovernanceParams struct {
	MinVotingPeriod    int64  `json:"min_voting_period"`
	MaxVotingPeriod    int64  `json:"max_voting_period"`
	MinQuorumVotes     uint64 `json:"min_quorum_votes"`
	ApprovalThreshold  uint8  `json:"approval_threshold"`
	MinProposalBalance uint64 `json:"min_proposal_balance"`
	MinVoteBalance     uint64 `json:"min_vote_balance"`
	GovernanceActive   bool   `json:"governance_active"`
}

func (p GovernanceParams) validate() error {
	if p.MinVotingPeriod <= 0 || p.MaxVotingPeriod < p.MinVotingPeriod {
		return apperrors.ErrInvalidParameters
	}
	if p.ApprovalThreshold > 100 {
		return apperrors.ErrInvalidParameters
	}
	return nil
}

// GovernanceService implementa a máquina de estados
// propor → votar → apurar → executar, mais o singleton de configuração.
type GovernanceService struct {
	DB      GovernanceStore
	effects map[models.ProposalType]ProposalEffect
}

// NewGovernanceService cria uma nova instância do serviço de governança.
func NewGovernanceService(db GovernanceStore) *GovernanceService {
	return &GovernanceService{DB: db, effects: make(map[models.ProposalType]ProposalEffect)}
}

// RegisterEffect registra o efeito de execução para um tipo de proposta.
func (s *GovernanceService) RegisterEffect(t models.ProposalType, effect ProposalEffect) {
	s.effects[t] = effect
}

// InitGovernance cria o singleton de configuração. Uma segunda
// inicialização colide na chave do singleton e é rejeitada.
func (s *GovernanceService) InitGovernance(
	authority solana.PublicKey, params GovernanceParams, now time.Time,
) (models.GovernanceConfig, error) {
	if err := params.validate(); err != nil {
		return models.GovernanceConfig{}, err
	}

	cfg := models.GovernanceConfig{
		Authority:          authority.String(),
		MinVotingPeriod:    params.MinVotingPeriod,
		MaxVotingPeriod:    params.MaxVotingPeriod,
		MinQuorumVotes:     params.MinQuorumVotes,
		ApprovalThreshold:  params.ApprovalThreshold,
		MinProposalBalance: params.MinProposalBalance,
		MinVoteBalance:     params.MinVoteBalance,
		GovernanceActive:   params.GovernanceActive,
		UpdatedAt:          now,
	}
	if err := s.DB.SaveGovernanceConfig(cfg); err != nil {
		return models.GovernanceConfig{}, err
	}
	log.Printf("Governança inicializada (quórum mínimo: %d, limiar: %d%%)",
		cfg.MinQuorumVotes, cfg.ApprovalThreshold)
	return cfg, nil
}

// UpdateGovernanceConfig sobrescreve os parâmetros de governança. Só a
// autoridade da configuração pode chamar; propostas já criadas mantêm o
// quórum e o limiar copiados na criação.
func (s *GovernanceService) UpdateGovernanceConfig(
	caller solana.PublicKey, params GovernanceParams, now time.Time,
) (models.GovernanceConfig, error) {
	cfg, found, err := s.DB.GetGovernanceConfig()
	if err != nil {
		return models.GovernanceConfig{}, err
	}
	if !found {
		return models.GovernanceConfig{}, storage.ErrNotFound
	}
	if cfg.Authority != caller.String() {
		return models.GovernanceConfig{}, apperrors.ErrUnauthorized
	}
	if err := params.validate(); err != nil {
		return models.GovernanceConfig{}, err
	}

	cfg.MinVotingPeriod = params.MinVotingPeriod
	cfg.MaxVotingPeriod = params.MaxVotingPeriod
	cfg.MinQuorumVotes = params.MinQuorumVotes
	cfg.ApprovalThreshold = params.ApprovalThreshold
	cfg.MinProposalBalance = params.MinProposalBalance
	cfg.MinVoteBalance = params.MinVoteBalance
	cfg.GovernanceActive = params.GovernanceActive
	cfg.UpdatedAt = now
	if err := s.DB.UpdateGovernanceConfig(cfg); err != nil {
		return models.GovernanceConfig{}, err
	}
	return cfg, nil
}

// GetConfig busca o singleton de configuração de governança.
func (s *GovernanceService) GetConfig() (models.GovernanceConfig, bool, error) {
	return s.DB.GetGovernanceConfig()
}

// CreateProposal cria uma proposta textual ativa. A janela de votação
// precisa cair entre now+min_voting_period e now+max_voting_period da
// configuração vigente; quórum e limiar são copiados no ato.
func (s *GovernanceService) CreateProposal(
	proposer solana.PublicKey, title, description string,
	votingEndsAt, now time.Time,
) (models.Proposal, error) {
	if title == "" || description == "" {
		return models.Proposal{}, apperrors.ErrInvalidParameters
	}
	if len(title) > models.MaxProposalTitleLen || len(description) > models.MaxProposalDescriptionLen {
		return models.Proposal{}, apperrors.ErrInvalidParameters
	}

	cfg, found, err := s.DB.GetGovernanceConfig()
	if err != nil {
		return models.Proposal{}, err
	}
	if !found {
		return models.Proposal{}, storage.ErrNotFound
	}
	if !cfg.GovernanceActive {
		return models.Proposal{}, apperrors.ErrInvalidParameters
	}

	minEnd, err := checkedAddSeconds(now, cfg.MinVotingPeriod)
	if err != nil {
		return models.Proposal{}, err
	}
	maxEnd, err := checkedAddSeconds(now, cfg.MaxVotingPeriod)
	if err != nil {
		return models.Proposal{}, err
	}
	if votingEndsAt.Before(minEnd) || votingEndsAt.After(maxEnd) {
		return models.Proposal{}, apperrors.ErrInvalidVotingPeriod
	}

	proposal := models.Proposal{
		ID:                          uuid.New().String(),
		Title:                       title,
		Description:                 description,
		Proposer:                    proposer.String(),
		IsActive:                    true,
		CreatedAt:                   now,
		VotingEndsAt:                votingEndsAt,
		ProposalType:                models.ProposalText,
		TargetAccounts:              pq.StringArray{},
		MinVotingPeriod:             cfg.MinVotingPeriod,
		QuorumVotes:                 cfg.MinQuorumVotes,
		ApprovalThresholdPercentage: cfg.ApprovalThreshold,
	}
	if err := s.DB.SaveProposal(proposal); err != nil {
		return models.Proposal{}, err
	}

	log.Printf("Proposta de governança criada: %s (votação encerra em %s)",
		proposal.Title, proposal.VotingEndsAt.Format(time.RFC3339))
	return proposal, nil
}

// VoteOnProposal registra o voto de um eleitor. O segundo voto do mesmo
// eleitor na mesma proposta colide na chave (proposal, voter) do storage
// e volta como storage.ErrDuplicateVote.
func (s *GovernanceService) VoteOnProposal(
	voter solana.PublicKey, proposalID string,
	voteYes bool, weight uint64, now time.Time,
) (models.VoteRecord, error) {
	proposal, found, err := s.DB.GetProposal(proposalID)
	if err != nil {
		return models.VoteRecord{}, err
	}
	if !found {
		return models.VoteRecord{}, storage.ErrNotFound
	}

	cfg, foundCfg, err := s.DB.GetGovernanceConfig()
	if err != nil {
		return models.VoteRecord{}, err
	}
	if !foundCfg {
		return models.VoteRecord{}, storage.ErrNotFound
	}

	if !proposal.IsActive {
		return models.VoteRecord{}, apperrors.ErrProposalInactive
	}
	if !now.Before(proposal.VotingEndsAt) {
		return models.VoteRecord{}, apperrors.ErrVotingPeriodEnded
	}
	if weight < cfg.MinVoteBalance {
		return models.VoteRecord{}, apperrors.ErrInvalidParameters
	}

	// Pré-checagem de overflow sobre o tally lido; a soma definitiva
	// acontece no SQL, na mesma transação da inserção do voto.
	tally := proposal.NoVotes
	if voteYes {
		tally = proposal.YesVotes
	}
	if _, err := checkedAddU64(tally, weight); err != nil {
		return models.VoteRecord{}, err
	}

	vote := models.VoteRecord{
		ID:         uuid.New().String(),
		ProposalID: proposalID,
		Voter:      voter.String(),
		IsYesVote:  voteYes,
		VoteWeight: weight,
		Timestamp:  now,
	}
	if err := s.DB.RecordVote(vote); err != nil {
		return models.VoteRecord{}, err
	}

	choice := "não"
	if voteYes {
		choice = "sim"
	}
	log.Printf("Voto registrado na proposta %s: %s com peso %d (eleitor %s)",
		proposal.Title, choice, weight, vote.Voter)
	return vote, nil
}

// ExecuteProposal apura e consome a única tentativa de execução de uma
// proposta cuja janela de votação terminou. Aprovação e rejeição gastam
// igualmente a tentativa; só propostas aprovadas disparam efeito.
func (s *GovernanceService) ExecuteProposal(
	executor solana.PublicKey, proposalID string, now time.Time,
) (models.Proposal, bool, error) {
	proposal, found, err := s.DB.GetProposal(proposalID)
	if err != nil {
		return models.Proposal{}, false, err
	}
	if !found {
		return models.Proposal{}, false, storage.ErrNotFound
	}

	if !proposal.IsActive {
		return models.Proposal{}, false, apperrors.ErrProposalInactive
	}
	if now.Before(proposal.VotingEndsAt) {
		return models.Proposal{}, false, apperrors.ErrVotingPeriodNotEnded
	}
	if proposal.Executed {
		return models.Proposal{}, false, apperrors.ErrProposalAlreadyExecuted
	}

	totalVotes, err := checkedAddU64(proposal.YesVotes, proposal.NoVotes)
	if err != nil {
		return models.Proposal{}, false, err
	}
	if totalVotes < proposal.QuorumVotes {
		// Quórum não atingido.
		return models.Proposal{}, false, apperrors.ErrInvalidParameters
	}

	yesPct := yesPercentage(proposal.YesVotes, totalVotes)
	approved := yesPct >= uint64(proposal.ApprovalThresholdPercentage)

	executorStr := executor.String()
	ok, err := s.DB.FinalizeProposal(proposalID, executorStr, now)
	if err != nil {
		return models.Proposal{}, false, err
	}
	if !ok {
		return models.Proposal{}, false, apperrors.ErrProposalAlreadyExecuted
	}

	proposal.Executed = true
	proposal.IsActive = false
	proposal.ExecutedAt = &now
	proposal.Executor = &executorStr

	if approved {
		log.Printf("Proposta aprovada e executada: %s (%d%% de sim, mínimo %d%%)",
			proposal.Title, yesPct, proposal.ApprovalThresholdPercentage)
		s.dispatchEffect(proposal)
	} else {
		log.Printf("Proposta rejeitada: %s (%d%% de sim, mínimo %d%%)",
			proposal.Title, yesPct, proposal.ApprovalThresholdPercentage)
	}
	return proposal, approved, nil
}

// dispatchEffect dispara o efeito do tipo da proposta. Text não tem efeito
// on-chain; tipos sem gancho registrado só são logados. Falha de efeito
// não desfaz a execução; a tentativa já foi consumida.
func (s *GovernanceService) dispatchEffect(p models.Proposal) {
	if p.ProposalType == models.ProposalText {
		log.Printf("Proposta textual %s: nenhuma ação adicional", p.ID)
		return
	}
	effect, ok := s.effects[p.ProposalType]
	if !ok {
		log.Printf("Proposta %s aprovada com tipo %s sem efeito registrado", p.ID, p.ProposalType)
		return
	}
	if err := effect(p); err != nil {
		log.Printf("ERRO: efeito da proposta %s (%s) falhou: %v", p.ID, p.ProposalType, err)
	}
}

// GetProposal busca uma proposta pelo ID.
func (s *GovernanceService) GetProposal(id string) (models.Proposal, bool, error) {
	return s.DB.GetProposal(id)
}

// ListProposals lista todas as propostas.
func (s *GovernanceService) ListProposals() ([]models.Proposal, error) {
	return s.DB.ListProposals()
}

// ListVotes lista os votos de uma proposta.
func (s *GovernanceService) ListVotes(proposalID string) ([]models.VoteRecord, error) {
	return s.DB.ListVotes(proposalID)
}

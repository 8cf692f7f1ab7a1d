package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/realstackxyz/realstack/models"
)

const proposalColumns = `id, title, description, proposer, is_active, created_at, voting_ends_at,
	yes_votes, no_votes, executed, executed_at, executor,
	proposal_type, target_accounts, execution_data,
	min_voting_period, quorum_votes, approval_threshold_percentage`

// SaveGovernanceConfig insere o singleton de configuração de governança.
func (d *DB) SaveGovernanceConfig(cfg models.GovernanceConfig) error {
	query := `INSERT INTO governance_config
		(singleton, authority, min_voting_period, max_voting_period, min_quorum_votes,
		 approval_threshold, min_proposal_balance, min_vote_balance, governance_active, updated_at)
		VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := d.Exec(query,
		cfg.Authority, cfg.MinVotingPeriod, cfg.MaxVotingPeriod, u64(cfg.MinQuorumVotes),
		int16(cfg.ApprovalThreshold), u64(cfg.MinProposalBalance), u64(cfg.MinVoteBalance),
		cfg.GovernanceActive, cfg.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("falha ao salvar configuração de governança: %w", err)
	}
	return nil
}

// UpdateGovernanceConfig sobrescreve o singleton de configuração.
func (d *DB) UpdateGovernanceConfig(cfg models.GovernanceConfig) error {
	query := `UPDATE governance_config SET authority = $1, min_voting_period = $2,
		max_voting_period = $3, min_quorum_votes = $4, approval_threshold = $5,
		min_proposal_balance = $6, min_vote_balance = $7, governance_active = $8, updated_at = $9
		WHERE singleton`
	_, err := d.Exec(query,
		cfg.Authority, cfg.MinVotingPeriod, cfg.MaxVotingPeriod, u64(cfg.MinQuorumVotes),
		int16(cfg.ApprovalThreshold), u64(cfg.MinProposalBalance), u64(cfg.MinVoteBalance),
		cfg.GovernanceActive, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao atualizar configuração de governança: %w", err)
	}
	return nil
}

// GetGovernanceConfig busca o singleton de configuração.
func (d *DB) GetGovernanceConfig() (models.GovernanceConfig, bool, error) {
	var cfg models.GovernanceConfig
	query := `SELECT authority, min_voting_period, max_voting_period, min_quorum_votes,
		approval_threshold, min_proposal_balance, min_vote_balance, governance_active, updated_at
		FROM governance_config WHERE singleton`
	err := d.Get(&cfg, query)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GovernanceConfig{}, false, nil
	}
	if err != nil {
		return models.GovernanceConfig{}, false, fmt.Errorf("falha ao buscar configuração de governança: %w", err)
	}
	return cfg, true, nil
}

// SaveProposal insere uma nova proposta.
func (d *DB) SaveProposal(p models.Proposal) error {
	query := `INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := d.Exec(query,
		p.ID, p.Title, p.Description, p.Proposer, p.IsActive, p.CreatedAt, p.VotingEndsAt,
		u64(p.YesVotes), u64(p.NoVotes), p.Executed, p.ExecutedAt, p.Executor,
		p.ProposalType, p.TargetAccounts, p.ExecutionData,
		p.MinVotingPeriod, u64(p.QuorumVotes), int16(p.ApprovalThresholdPercentage),
	)
	if err != nil {
		return fmt.Errorf("falha ao salvar proposta: %w", err)
	}
	return nil
}

// GetProposal busca uma proposta pelo ID.
func (d *DB) GetProposal(id string) (models.Proposal, bool, error) {
	var p models.Proposal
	err := d.Get(&p, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Proposal{}, false, nil
	}
	if err != nil {
		return models.Proposal{}, false, fmt.Errorf("falha ao buscar proposta: %w", err)
	}
	return p, true, nil
}

// ListProposals retorna todas as propostas, mais recentes primeiro.
func (d *DB) ListProposals() ([]models.Proposal, error) {
	var ps []models.Proposal
	err := d.Select(&ps, `SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar propostas: %w", err)
	}
	return ps, nil
}

// RecordVote insere o voto e acumula o peso na proposta em uma única
// transação. O índice único (proposal_id, voter) rejeita estruturalmente o
// segundo voto do mesmo eleitor: a inserção colide em vez de sobrescrever.
func (d *DB) RecordVote(vote models.VoteRecord) error {
	tx, err := d.Beginx()
	if err != nil {
		return fmt.Errorf("falha ao abrir transação de voto: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO votes (id, proposal_id, voter, is_yes_vote, vote_weight, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		vote.ID, vote.ProposalID, vote.Voter, vote.IsYesVote, u64(vote.VoteWeight), vote.Timestamp,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("falha ao salvar voto: %w", err)
	}

	column := "no_votes"
	if vote.IsYesVote {
		column = "yes_votes"
	}
	_, err = tx.Exec(`UPDATE proposals SET `+column+` = `+column+` + $1 WHERE id = $2`,
		u64(vote.VoteWeight), vote.ProposalID,
	)
	if err != nil {
		return fmt.Errorf("falha ao acumular voto: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar transação de voto: %w", err)
	}
	return nil
}

// ListVotes retorna os votos de uma proposta em ordem de chegada.
func (d *DB) ListVotes(proposalID string) ([]models.VoteRecord, error) {
	var votes []models.VoteRecord
	query := `SELECT id, proposal_id, voter, is_yes_vote, vote_weight, timestamp
		FROM votes WHERE proposal_id = $1 ORDER BY timestamp`
	err := d.Select(&votes, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar votos: %w", err)
	}
	return votes, nil
}

// FinalizeProposal consome a única tentativa de execução da proposta
// (compare-and-set). Retorna false se a proposta já tinha sido executada.
func (d *DB) FinalizeProposal(id, executor string, now time.Time) (bool, error) {
	query := `UPDATE proposals SET executed = TRUE, is_active = FALSE, executed_at = $1, executor = $2
		WHERE id = $3 AND NOT executed`
	res, err := d.Exec(query, now, executor, id)
	if err != nil {
		return false, fmt.Errorf("falha ao executar proposta: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

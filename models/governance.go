package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	MaxProposalTitleLen       = 100
	MaxProposalDescriptionLen = 1000

	// MaxTargetAccounts limita as contas alvo de uma proposta.
	MaxTargetAccounts = 2
	// MaxExecutionDataLen limita o payload opaco de execução.
	MaxExecutionDataLen = 128
)

// ProposalType classifica o efeito de uma proposta aprovada.
type ProposalType int16

const (
	// ProposalText é uma proposta puramente textual, sem efeito na execução.
	ProposalText ProposalType = iota
	ProposalPlatformParameters
	ProposalAddAssetCategory
	ProposalUpdateFees
	ProposalProgramUpgrade
	ProposalTreasuryTransfer
	ProposalAssetAction
	ProposalCommunityFunding
)

func (t ProposalType) Valid() bool {
	return t >= ProposalText && t <= ProposalCommunityFunding
}

func (t ProposalType) String() string {
	switch t {
	case ProposalText:
		return "text"
	case ProposalPlatformParameters:
		return "platform-parameters"
	case ProposalAddAssetCategory:
		return "add-asset-category"
	case ProposalUpdateFees:
		return "update-fees"
	case ProposalProgramUpgrade:
		return "program-upgrade"
	case ProposalTreasuryTransfer:
		return "treasury-transfer"
	case ProposalAssetAction:
		return "asset-action"
	case ProposalCommunityFunding:
		return "community-funding"
	default:
		return "unknown"
	}
}

// Proposal é uma proposta de governança. O quórum e o limiar de aprovação
// são copiados da configuração vigente no momento da criação; mudanças
// posteriores na configuração não afetam propostas existentes.
type Proposal struct {
	ID          string `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Proposer    string `json:"proposer" db:"proposer"`

	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	VotingEndsAt time.Time `json:"voting_ends_at" db:"voting_ends_at"`

	YesVotes uint64 `json:"yes_votes" db:"yes_votes"`
	NoVotes  uint64 `json:"no_votes" db:"no_votes"`

	Executed   bool       `json:"executed" db:"executed"`
	ExecutedAt *time.Time `json:"executed_at,omitempty" db:"executed_at"`
	Executor   *string    `json:"executor,omitempty" db:"executor"`

	ProposalType   ProposalType   `json:"proposal_type" db:"proposal_type"`
	TargetAccounts pq.StringArray `json:"target_accounts" db:"target_accounts"`
	ExecutionData  []byte         `json:"execution_data,omitempty" db:"execution_data"`

	MinVotingPeriod             int64  `json:"min_voting_period" db:"min_voting_period"`
	QuorumVotes                 uint64 `json:"quorum_votes" db:"quorum_votes"`
	ApprovalThresholdPercentage uint8  `json:"approval_threshold_percentage" db:"approval_threshold_percentage"`
}

// VoteRecord registra o voto de um eleitor em uma proposta. A chave
// (proposal_id, voter) é única no storage: a segunda tentativa de voto do
// mesmo eleitor colide e é rejeitada, nunca sobrescrita.
type VoteRecord struct {
	ID         string    `json:"id" db:"id"`
	ProposalID string    `json:"proposal_id" db:"proposal_id"`
	Voter      string    `json:"voter" db:"voter"`
	IsYesVote  bool      `json:"is_yes_vote" db:"is_yes_vote"`
	VoteWeight uint64    `json:"vote_weight" db:"vote_weight"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// GovernanceConfig é o registro singleton com os parâmetros de governança.
type GovernanceConfig struct {
	Authority        string `json:"authority" db:"authority"`
	MinVotingPeriod  int64  `json:"min_voting_period" db:"min_voting_period"`
	MaxVotingPeriod  int64  `json:"max_voting_period" db:"max_voting_period"`
	MinQuorumVotes   uint64 `json:"min_quorum_votes" db:"min_quorum_votes"`
	ApprovalThreshold uint8 `json:"approval_threshold" db:"approval_threshold"`
	MinProposalBalance uint64 `json:"min_proposal_balance" db:"min_proposal_balance"`
	MinVoteBalance     uint64 `json:"min_vote_balance" db:"min_vote_balance"`
	GovernanceActive   bool   `json:"governance_active" db:"governance_active"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

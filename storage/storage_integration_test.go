package storage_test

import (
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/storage"
)

// openTestDB conecta ao banco apontado por TEST_DATABASE_URL; sem a
// variável o teste de integração é pulado.
func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL não definida; pulando teste de integração")
	}
	db, err := storage.NewDB(url, "./migrations")
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertProposal(t *testing.T, db *storage.DB) models.Proposal {
	t.Helper()
	now := time.Now().UTC()
	p := models.Proposal{
		ID:                          uuid.New().String(),
		Title:                       "Proposta de integração",
		Description:                 "Teste",
		Proposer:                    solana.NewWallet().PublicKey().String(),
		IsActive:                    true,
		CreatedAt:                   now,
		VotingEndsAt:                now.Add(24 * time.Hour),
		ProposalType:                models.ProposalText,
		TargetAccounts:              pq.StringArray{},
		MinVotingPeriod:             3600,
		QuorumVotes:                 100,
		ApprovalThresholdPercentage: 60,
	}
	require.Nil(t, db.SaveProposal(p))
	return p
}

// TestGovernanceConfigSingleton garante que a segunda inicialização colide.
func TestGovernanceConfigSingleton(t *testing.T) {
	db := openTestDB(t)

	cfg := models.GovernanceConfig{
		Authority:         solana.NewWallet().PublicKey().String(),
		MinVotingPeriod:   3600,
		MaxVotingPeriod:   86400,
		MinQuorumVotes:    100,
		ApprovalThreshold: 60,
		GovernanceActive:  true,
		UpdatedAt:         time.Now().UTC(),
	}

	err := db.SaveGovernanceConfig(cfg)
	if err != nil {
		// Outra execução do teste pode já ter criado o singleton.
		require.ErrorIs(t, err, storage.ErrAlreadyInitialized)
	}

	err = db.SaveGovernanceConfig(cfg)
	assert.ErrorIs(t, err, storage.ErrAlreadyInitialized)

	got, found, err := db.GetGovernanceConfig()
	require.Nil(t, err)
	assert.True(t, found)
	assert.NotEmpty(t, got.Authority)
}

// TestRecordVoteUniqueness verifica o índice único (proposal_id, voter) e a
// acumulação transacional do tally.
func TestRecordVoteUniqueness(t *testing.T) {
	db := openTestDB(t)
	p := insertProposal(t, db)

	voter := solana.NewWallet().PublicKey().String()
	vote := models.VoteRecord{
		ID:         uuid.New().String(),
		ProposalID: p.ID,
		Voter:      voter,
		IsYesVote:  true,
		VoteWeight: 42,
		Timestamp:  time.Now().UTC(),
	}
	require.Nil(t, db.RecordVote(vote))

	// O mesmo eleitor tentando de novo, ainda que com voto diferente.
	second := vote
	second.ID = uuid.New().String()
	second.IsYesVote = false
	assert.ErrorIs(t, db.RecordVote(second), storage.ErrDuplicateVote)

	got, found, err := db.GetProposal(p.ID)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(42), got.YesVotes)
	assert.Equal(t, uint64(0), got.NoVotes)

	votes, err := db.ListVotes(p.ID)
	require.Nil(t, err)
	assert.Len(t, votes, 1)
}

// TestFinalizeProposalOnce verifica que o compare-and-set consome a
// tentativa de execução exatamente uma vez.
func TestFinalizeProposalOnce(t *testing.T) {
	db := openTestDB(t)
	p := insertProposal(t, db)

	executor := solana.NewWallet().PublicKey().String()
	now := time.Now().UTC()

	ok, err := db.FinalizeProposal(p.ID, executor, now)
	require.Nil(t, err)
	assert.True(t, ok)

	ok, err = db.FinalizeProposal(p.ID, executor, now)
	require.Nil(t, err)
	assert.False(t, ok)

	got, found, err := db.GetProposal(p.ID)
	require.Nil(t, err)
	require.True(t, found)
	assert.True(t, got.Executed)
	assert.False(t, got.IsActive)
	assert.Equal(t, executor, *got.Executor)
}

// TestBurnAssetCAS verifica a terminalidade da queima no storage.
func TestBurnAssetCAS(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	asset := models.AssetToken{
		ID:                uuid.New().String(),
		Authority:         solana.NewWallet().PublicKey().String(),
		MintAddress:       solana.NewWallet().PublicKey().String(),
		Name:              "Ativo de integração",
		Symbol:            "INT",
		Category:          "other",
		Valuation:         1000,
		TotalShares:       100,
		InitialSharePrice: 10,
		CurrentSharePrice: 10,
		IsTradable:        true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.Nil(t, db.SaveAsset(asset))

	ok, err := db.BurnAsset(asset.ID, now)
	require.Nil(t, err)
	assert.True(t, ok)

	// Segunda queima não encontra linha não queimada.
	ok, err = db.BurnAsset(asset.ID, now)
	require.Nil(t, err)
	assert.False(t, ok)

	// Negociabilidade presa em false após a queima.
	ok, err = db.SetAssetTradability(asset.ID, true, now)
	require.Nil(t, err)
	assert.False(t, ok)

	got, found, err := db.GetAsset(asset.ID)
	require.Nil(t, err)
	require.True(t, found)
	assert.True(t, got.IsBurned)
	assert.False(t, got.IsTradable)
}

// TestAddIncomeDistribution verifica a acumulação no SQL.
func TestAddIncomeDistribution(t *testing.T) {
	db := openTestDB(t)

	now := time.Now().UTC()
	asset := models.AssetToken{
		ID:                uuid.New().String(),
		Authority:         solana.NewWallet().PublicKey().String(),
		MintAddress:       solana.NewWallet().PublicKey().String(),
		Name:              "Ativo com renda",
		Symbol:            "RND",
		Category:          "business",
		Valuation:         1000,
		TotalShares:       100,
		InitialSharePrice: 10,
		CurrentSharePrice: 10,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.Nil(t, db.SaveAsset(asset))

	require.Nil(t, db.AddIncomeDistribution(asset.ID, 300, now))
	require.Nil(t, db.AddIncomeDistribution(asset.ID, 200, now.Add(time.Minute)))

	got, found, err := db.GetAsset(asset.ID)
	require.Nil(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(500), got.TotalIncomeDistributed)
	assert.NotNil(t, got.LastIncomeDistribution)
}

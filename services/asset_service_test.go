package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/realstackxyz/realstack/apperrors"
	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/services"
)

// MockAssetStore é uma implementação mock de services.AssetStore.
type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) SaveAsset(asset models.AssetToken) error {
	args := m.Called(asset)
	return args.Error(0)
}
func (m *MockAssetStore) GetAsset(id string) (models.AssetToken, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.AssetToken), args.Bool(1), args.Error(2)
}
func (m *MockAssetStore) GetAssetByMintAddress(mintAddress string) (models.AssetToken, bool, error) {
	args := m.Called(mintAddress)
	return args.Get(0).(models.AssetToken), args.Bool(1), args.Error(2)
}
func (m *MockAssetStore) ListAssets() ([]models.AssetToken, error) {
	args := m.Called()
	return args.Get(0).([]models.AssetToken), args.Error(1)
}
func (m *MockAssetStore) UpdateAssetValuation(id string, valuation, sharePrice uint64, now time.Time) error {
	args := m.Called(id, valuation, sharePrice, now)
	return args.Error(0)
}
func (m *MockAssetStore) MarkAssetVerified(id, verifier string, now time.Time) error {
	args := m.Called(id, verifier, now)
	return args.Error(0)
}
func (m *MockAssetStore) SetAssetTradability(id string, tradable bool, now time.Time) (bool, error) {
	args := m.Called(id, tradable, now)
	return args.Bool(0), args.Error(1)
}
func (m *MockAssetStore) BurnAsset(id string, now time.Time) (bool, error) {
	args := m.Called(id, now)
	return args.Bool(0), args.Error(1)
}
func (m *MockAssetStore) AddIncomeDistribution(id string, amount uint64, now time.Time) error {
	args := m.Called(id, amount, now)
	return args.Error(0)
}

// MockSolanaLedger é uma implementação mock de services.SolanaLedger.
type MockSolanaLedger struct {
	mock.Mock
}

func (m *MockSolanaLedger) CreateMintAndTokenAccount(ownerPubKey solana.PublicKey, assetSymbol string) (solana.PublicKey, solana.PublicKey, error) {
	args := m.Called(ownerPubKey, assetSymbol)
	return args.Get(0).(solana.PublicKey), args.Get(1).(solana.PublicKey), args.Error(2)
}
func (m *MockSolanaLedger) MintTokensToAccount(mintAddress, destinationATA solana.PublicKey, amount uint64) (solana.Signature, error) {
	args := m.Called(mintAddress, destinationATA, amount)
	return args.Get(0).(solana.Signature), args.Error(1)
}
func (m *MockSolanaLedger) PrepareTransferTransaction(mintAddress, fromATA, toATA, fromOwnerPubKey solana.PublicKey, amount uint64) (string, error) {
	args := m.Called(mintAddress, fromATA, toATA, fromOwnerPubKey, amount)
	return args.String(0), args.Error(1)
}

// TestCreateAssetToken verifica a criação de um ativo com mint já existente.
func TestCreateAssetToken(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	authority := solana.NewWallet().PublicKey()
	mintAddr := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	mockDB.On("SaveAsset", mock.AnythingOfType("models.AssetToken")).Return(nil).Once()

	asset, err := service.CreateAssetToken(
		authority, mintAddr.String(),
		"Edifício Central", "EDIF", "real-estate", "Prédio comercial no centro", "https://example.com/edif.json",
		5_000_000, 10_000, 500, now,
	)

	assert.Nil(t, err)
	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, authority.String(), asset.Authority)
	assert.Equal(t, mintAddr.String(), asset.MintAddress)
	assert.Equal(t, uint64(500), asset.InitialSharePrice)
	assert.Equal(t, uint64(500), asset.CurrentSharePrice)
	assert.False(t, asset.IsTradable)
	assert.False(t, asset.IsVerified)
	assert.False(t, asset.CanMintAdditional)
	assert.Equal(t, models.FrequencyMonthly, asset.DistributionFrequency)

	mockDB.AssertExpectations(t)
}

// TestCreateAssetTokenWithAutoMint verifica que um mint de lastro é criado
// on-chain quando o endereço vem vazio.
func TestCreateAssetTokenWithAutoMint(t *testing.T) {
	mockDB := new(MockAssetStore)
	mockLedger := new(MockSolanaLedger)
	service := services.NewAssetService(mockDB, mockLedger)

	authority := solana.NewWallet().PublicKey()
	mintAddr := solana.NewWallet().PublicKey()
	ataAddr := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	mockLedger.On("CreateMintAndTokenAccount", authority, "FAZ").Return(mintAddr, ataAddr, nil).Once()
	mockLedger.On("MintTokensToAccount", mintAddr, ataAddr, uint64(2_000)).Return(solana.Signature{}, nil).Once()
	mockDB.On("SaveAsset", mock.AnythingOfType("models.AssetToken")).Return(nil).Once()

	asset, err := service.CreateAssetToken(
		authority, "",
		"Fazenda Boa Vista", "FAZ", "land", "", "",
		1_000_000, 2_000, 500, now,
	)

	assert.Nil(t, err)
	assert.Equal(t, mintAddr.String(), asset.MintAddress)

	mockDB.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
}

// TestCreateAssetTokenValidation cobre os limites de campo e de valores.
func TestCreateAssetTokenValidation(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	authority := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey().String()
	now := time.Now().UTC()

	cases := []struct {
		name        string
		assetName   string
		symbol      string
		category    string
		description string
		valuation   uint64
		totalShares uint64
		sharePrice  uint64
		wantErr     error
	}{
		{"nome vazio", "", "SYM", "land", "", 100, 10, 10, apperrors.ErrInvalidParameters},
		{"nome longo demais", strings.Repeat("a", 101), "SYM", "land", "", 100, 10, 10, apperrors.ErrAssetNameTooLong},
		{"descrição longa demais", "Ativo", "SYM", "land", strings.Repeat("d", 501), 100, 10, 10, apperrors.ErrAssetDescriptionTooLong},
		{"categoria desconhecida", "Ativo", "SYM", "spaceship", "", 100, 10, 10, apperrors.ErrInvalidAssetCategory},
		{"avaliação zero", "Ativo", "SYM", "land", "", 0, 10, 10, apperrors.ErrInvalidValuation},
		{"preço da fração zero", "Ativo", "SYM", "land", "", 100, 10, 0, apperrors.ErrSharePriceTooLow},
		{"frações zero", "Ativo", "SYM", "land", "", 100, 0, 10, apperrors.ErrInvalidParameters},
		{"frações acima do teto", "Ativo", "SYM", "land", "", 100, models.MaxTotalShares + 1, 10, apperrors.ErrTotalSharesExceedsMaximum},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateAssetToken(
				authority, mint,
				tc.assetName, tc.symbol, tc.category, tc.description, "",
				tc.valuation, tc.totalShares, tc.sharePrice, now,
			)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Nenhum caso inválido deve chegar ao storage.
	mockDB.AssertNotCalled(t, "SaveAsset", mock.Anything)
}

// TestCreateAssetTokenInvalidMint rejeita um endereço de mint que não é base58.
func TestCreateAssetTokenInvalidMint(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	_, err := service.CreateAssetToken(
		solana.NewWallet().PublicKey(), "isto-não-é-base58",
		"Ativo", "SYM", "land", "", "",
		100, 10, 10, time.Now().UTC(),
	)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTokenMint)
}

// TestUpdateAssetValuationUnauthorized garante que só a autoridade muda a
// avaliação.
func TestUpdateAssetValuationUnauthorized(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	authority := solana.NewWallet().PublicKey()
	intruder := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{ID: "asset-1", Authority: authority.String()}, true, nil).Once()

	_, err := service.UpdateAssetValuation(intruder, "asset-1", 999, 9, now)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockDB.AssertNotCalled(t, "UpdateAssetValuation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestVerifyAssetOverwrites confirma que re-verificação sobrescreve o
// verificador anterior em vez de falhar.
func TestVerifyAssetOverwrites(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	firstVerifier := solana.NewWallet().PublicKey().String()
	secondVerifier := solana.NewWallet().PublicKey()
	verifiedAt := time.Now().UTC().Add(-time.Hour)
	now := time.Now().UTC()

	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{
		ID: "asset-1", IsVerified: true, Verifier: &firstVerifier, VerifiedAt: &verifiedAt,
	}, true, nil).Once()
	mockDB.On("MarkAssetVerified", "asset-1", secondVerifier.String(), now).Return(nil).Once()

	asset, err := service.VerifyAsset(secondVerifier, "asset-1", now)

	assert.Nil(t, err)
	assert.True(t, asset.IsVerified)
	assert.Equal(t, secondVerifier.String(), *asset.Verifier)

	mockDB.AssertExpectations(t)
}

// TestBurnAssetTerminal verifica que a queima é terminal: segunda queima e
// reativação da negociabilidade falham.
func TestBurnAssetTerminal(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	authority := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{
		ID: "asset-1", Authority: authority.String(), IsTradable: true,
	}, true, nil).Once()
	mockDB.On("BurnAsset", "asset-1", now).Return(true, nil).Once()

	asset, err := service.BurnAssetToken(authority, "asset-1", now)
	assert.Nil(t, err)
	assert.True(t, asset.IsBurned)
	assert.False(t, asset.IsTradable)

	// Segunda queima.
	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{
		ID: "asset-1", Authority: authority.String(), IsBurned: true,
	}, true, nil).Once()
	_, err = service.BurnAssetToken(authority, "asset-1", now)
	assert.ErrorIs(t, err, apperrors.ErrAssetAlreadyBurned)

	// Negociabilidade fica presa em false após a queima; o guard do storage
	// retorna false.
	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{
		ID: "asset-1", Authority: authority.String(), IsBurned: true,
	}, true, nil).Once()
	mockDB.On("SetAssetTradability", "asset-1", true, now).Return(false, nil).Once()
	_, err = service.ToggleTradability(authority, "asset-1", true, now)
	assert.ErrorIs(t, err, apperrors.ErrAssetBurned)

	mockDB.AssertExpectations(t)
}

// TestDistributeIncome verifica a contabilidade monotônica da distribuição.
func TestDistributeIncome(t *testing.T) {
	mockDB := new(MockAssetStore)
	service := services.NewAssetService(mockDB, nil)

	authority := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{
		ID: "asset-1", Authority: authority.String(),
		DistributionFrequency:  models.FrequencyCustom,
		TotalIncomeDistributed: 300,
	}, true, nil).Once()
	mockDB.On("AddIncomeDistribution", "asset-1", uint64(200), now).Return(nil).Once()

	asset, err := service.DistributeIncome(authority, "asset-1", 200, now)

	assert.Nil(t, err)
	assert.Equal(t, uint64(500), asset.TotalIncomeDistributed)
	assert.Equal(t, now, *asset.LastIncomeDistribution)

	mockDB.AssertExpectations(t)
}

// TestDistributeIncomeRejections cobre queima, valor zero, janela mínima e
// overflow do acumulado.
func TestDistributeIncomeRejections(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	now := time.Now().UTC()
	recent := now.Add(-24 * time.Hour)
	maxUint64 := ^uint64(0)

	cases := []struct {
		name    string
		asset   models.AssetToken
		amount  uint64
		wantErr error
	}{
		{
			"ativo queimado",
			models.AssetToken{ID: "a", Authority: authority.String(), IsBurned: true},
			100, apperrors.ErrAssetBurned,
		},
		{
			"valor zero",
			models.AssetToken{ID: "a", Authority: authority.String()},
			0, apperrors.ErrInvalidDistributionAmount,
		},
		{
			"distribuição cedo demais",
			models.AssetToken{
				ID: "a", Authority: authority.String(),
				DistributionFrequency:  models.FrequencyMonthly,
				LastIncomeDistribution: &recent,
			},
			100, apperrors.ErrDistributionTooFrequent,
		},
		{
			"overflow do acumulado",
			models.AssetToken{
				ID: "a", Authority: authority.String(),
				DistributionFrequency:  models.FrequencyCustom,
				TotalIncomeDistributed: maxUint64,
			},
			1, apperrors.ErrMathOverflow,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB := new(MockAssetStore)
			service := services.NewAssetService(mockDB, nil)

			mockDB.On("GetAsset", "a").Return(tc.asset, true, nil).Once()

			_, err := service.DistributeIncome(authority, "a", tc.amount, now)

			assert.ErrorIs(t, err, tc.wantErr)
			mockDB.AssertNotCalled(t, "AddIncomeDistribution", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// TestPrepareIncomePayout verifica a preparação da transação de pagamento.
func TestPrepareIncomePayout(t *testing.T) {
	mockDB := new(MockAssetStore)
	mockLedger := new(MockSolanaLedger)
	service := services.NewAssetService(mockDB, mockLedger)

	authority := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	fromATA, _, _ := solana.FindAssociatedTokenAddress(authority, mint)
	toATA, _, _ := solana.FindAssociatedTokenAddress(recipient, mint)

	mockDB.On("GetAsset", "asset-1").Return(models.AssetToken{
		ID: "asset-1", Authority: authority.String(), MintAddress: mint.String(),
	}, true, nil).Once()
	mockLedger.On("PrepareTransferTransaction", mint, fromATA, toATA, authority, uint64(50)).
		Return("tx_serializada_base64", nil).Once()

	serializedTx, err := service.PrepareIncomePayout(authority, "asset-1", recipient.String(), 50)

	assert.Nil(t, err)
	assert.Equal(t, "tx_serializada_base64", serializedTx)

	mockDB.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
}

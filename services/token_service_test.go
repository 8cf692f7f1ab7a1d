package services_test

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/realstackxyz/realstack/apperrors"
	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/services"
)

// MockTokenStore é uma implementação mock de services.TokenStore.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) SavePlatformToken(t models.PlatformToken) error {
	args := m.Called(t)
	return args.Error(0)
}
func (m *MockTokenStore) GetPlatformToken() (models.PlatformToken, bool, error) {
	args := m.Called()
	return args.Get(0).(models.PlatformToken), args.Bool(1), args.Error(2)
}
func (m *MockTokenStore) SetPendingAuthority(pending string, now time.Time) error {
	args := m.Called(pending, now)
	return args.Error(0)
}
func (m *MockTokenStore) PromotePendingAuthority(newAuthority string, now time.Time) error {
	args := m.Called(newAuthority, now)
	return args.Error(0)
}
func (m *MockTokenStore) UpdateFeeConfig(fee models.FeeConfig, now time.Time) error {
	args := m.Called(fee, now)
	return args.Error(0)
}
func (m *MockTokenStore) SetTransferPause(paused bool, now time.Time) error {
	args := m.Called(paused, now)
	return args.Error(0)
}

// TestInitializePlatformToken verifica os buckets de distribuição
// (arredondados para baixo) e a taxa padrão.
func TestInitializePlatformToken(t *testing.T) {
	mockDB := new(MockTokenStore)
	service := services.NewTokenService(mockDB)

	authority := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	var saved models.PlatformToken
	mockDB.On("SavePlatformToken", mock.AnythingOfType("models.PlatformToken")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(models.PlatformToken) }).
		Return(nil).Once()

	// Supply que não divide exato: cada bucket trunca para baixo.
	token, err := service.Initialize(authority, "RealStack Token", "RSTK", "https://example.com/rstk.json",
		mint.String(), 1_000_000_003, now)

	assert.Nil(t, err)
	assert.Equal(t, uint64(400_000_001), token.Distribution.CommunityAllocation)    // 40%
	assert.Equal(t, uint64(250_000_000), token.Distribution.AssetReserveAllocation) // 25%
	assert.Equal(t, uint64(200_000_000), token.Distribution.DevelopmentAllocation)  // 20%
	assert.Equal(t, uint64(100_000_000), token.Distribution.LiquidityAllocation)    // 10%
	assert.Equal(t, uint64(50_000_000), token.Distribution.TeamAllocation)          // 5%

	sum := token.Distribution.CommunityAllocation +
		token.Distribution.AssetReserveAllocation +
		token.Distribution.DevelopmentAllocation +
		token.Distribution.LiquidityAllocation +
		token.Distribution.TeamAllocation
	assert.LessOrEqual(t, sum, token.TotalSupply)

	assert.Equal(t, models.DefaultTransactionFeeBps, token.FeeConfig.TransactionFeeBps)
	assert.Equal(t, authority.String(), token.FeeConfig.FeeRecipient)
	assert.True(t, token.FeeConfig.FeesEnabled)
	assert.True(t, token.IsInitialized)
	assert.False(t, token.TransfersPaused)
	assert.Nil(t, token.PendingAuthority)

	assert.Equal(t, token, saved)
	mockDB.AssertExpectations(t)
}

// TestInitializePlatformTokenValidation cobre campos vazios, limites e mint
// inválido.
func TestInitializePlatformTokenValidation(t *testing.T) {
	mockDB := new(MockTokenStore)
	service := services.NewTokenService(mockDB)

	authority := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey().String()
	now := time.Now().UTC()

	_, err := service.Initialize(authority, "", "RSTK", "", mint, 1000, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameters)

	_, err = service.Initialize(authority, "RealStack", "RSTK", "", mint, 0, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameters)

	_, err = service.Initialize(authority, "RealStack", "RSTK", "", "mint-inválido", 1000, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTokenMint)

	mockDB.AssertNotCalled(t, "SavePlatformToken", mock.Anything)
}

// TestUpdateFeeConfigCap aceita exatamente 1000 bps e rejeita 1001.
func TestUpdateFeeConfigCap(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey().String()
	now := time.Now().UTC()
	existing := models.PlatformToken{Authority: authority.String(), IsInitialized: true}

	mockDB := new(MockTokenStore)
	service := services.NewTokenService(mockDB)
	atCap := models.FeeConfig{TransactionFeeBps: 1000, FeeRecipient: recipient, FeesEnabled: true}
	mockDB.On("GetPlatformToken").Return(existing, true, nil).Once()
	mockDB.On("UpdateFeeConfig", atCap, now).Return(nil).Once()

	err := service.UpdateFeeConfig(authority, atCap, now)
	assert.Nil(t, err)
	mockDB.AssertExpectations(t)

	mockDB = new(MockTokenStore)
	service = services.NewTokenService(mockDB)
	mockDB.On("GetPlatformToken").Return(existing, true, nil).Once()

	err = service.UpdateFeeConfig(authority, models.FeeConfig{
		TransactionFeeBps: 1001, FeeRecipient: recipient,
	}, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameters)
	mockDB.AssertNotCalled(t, "UpdateFeeConfig", mock.Anything, mock.Anything)
}

// TestTwoStepAuthorityTransfer cobre nomeação, aceite pelo sucessor certo e
// rejeição de um reclamante errado.
func TestTwoStepAuthorityTransfer(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	successor := solana.NewWallet().PublicKey()
	intruder := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	// Nomeação pela autoridade atual.
	mockDB := new(MockTokenStore)
	service := services.NewTokenService(mockDB)
	mockDB.On("GetPlatformToken").Return(models.PlatformToken{
		Authority: authority.String(), IsInitialized: true,
	}, true, nil).Once()
	mockDB.On("SetPendingAuthority", successor.String(), now).Return(nil).Once()

	err := service.TransferAuthority(authority, successor, now)
	assert.Nil(t, err)
	mockDB.AssertExpectations(t)

	// Nomeação por quem não é autoridade.
	mockDB = new(MockTokenStore)
	service = services.NewTokenService(mockDB)
	mockDB.On("GetPlatformToken").Return(models.PlatformToken{
		Authority: authority.String(), IsInitialized: true,
	}, true, nil).Once()

	err = service.TransferAuthority(intruder, successor, now)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Aceite por quem não é o sucessor nomeado.
	pending := successor.String()
	mockDB = new(MockTokenStore)
	service = services.NewTokenService(mockDB)
	mockDB.On("GetPlatformToken").Return(models.PlatformToken{
		Authority: authority.String(), PendingAuthority: &pending, IsInitialized: true,
	}, true, nil).Once()

	err = service.AcceptAuthority(intruder, now)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Aceite pelo sucessor nomeado.
	mockDB = new(MockTokenStore)
	service = services.NewTokenService(mockDB)
	mockDB.On("GetPlatformToken").Return(models.PlatformToken{
		Authority: authority.String(), PendingAuthority: &pending, IsInitialized: true,
	}, true, nil).Once()
	mockDB.On("PromotePendingAuthority", successor.String(), now).Return(nil).Once()

	err = service.AcceptAuthority(successor, now)
	assert.Nil(t, err)
	mockDB.AssertExpectations(t)

	// Aceite sem nomeação pendente.
	mockDB = new(MockTokenStore)
	service = services.NewTokenService(mockDB)
	mockDB.On("GetPlatformToken").Return(models.PlatformToken{
		Authority: authority.String(), IsInitialized: true,
	}, true, nil).Once()

	err = service.AcceptAuthority(successor, now)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// TestSetTransferPause liga e desliga a pausa global.
func TestSetTransferPause(t *testing.T) {
	mockDB := new(MockTokenStore)
	service := services.NewTokenService(mockDB)

	authority := solana.NewWallet().PublicKey()
	now := time.Now().UTC()

	mockDB.On("GetPlatformToken").Return(models.PlatformToken{
		Authority: authority.String(), IsInitialized: true,
	}, true, nil).Twice()
	mockDB.On("SetTransferPause", true, now).Return(nil).Once()
	mockDB.On("SetTransferPause", false, now).Return(nil).Once()

	assert.Nil(t, service.SetTransferPause(authority, true, now))
	assert.Nil(t, service.SetTransferPause(authority, false, now))

	mockDB.AssertExpectations(t)
}

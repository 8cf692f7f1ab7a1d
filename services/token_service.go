package services

import (
	"log"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/realstackxyz/realstack/apperrors"
	"github.com/realstackxyz/realstack/models"
	"github.com/realstackxyz/realstack/storage"
)

// TokenStore é o contrato de persistência do token de plataforma.
type TokenStore interface {
	SavePlatformToken(t models.PlatformToken) error
	GetPlatformToken() (models.PlatformToken, bool, error)
	SetPendingAuthority(pending string, now time.Time) error
	PromotePendingAuthority(newAuthority string, now time.Time) error
	UpdateFeeConfig(fee models.FeeConfig, now time.Time) error
	SetTransferPause(paused bool, now time.Time) error
}

// TokenService gerencia o registro singleton do token de plataforma:
// metadados, buckets de distribuição, taxas, pausa de transferências e a
// transferência de autoridade em duas etapas.
type TokenService struct {
	DB TokenStore
}

// NewTokenService cria uma nova instância do serviço do token de plataforma.
func NewTokenService(db TokenStore) *TokenService {
	return &TokenService{DB: db}
}

// Initialize cria o singleton do token de plataforma com os buckets de
// distribuição calculados por arredondamento para baixo e a taxa padrão.
// Uma segunda inicialização colide no singleton e é rejeitada.
func (s *TokenService) Initialize(
	authority solana.PublicKey,
	name, symbol, uri, mintAddress string,
	totalSupply uint64, now time.Time,
) (models.PlatformToken, error) {
	if name == "" || symbol == "" {
		return models.PlatformToken{}, apperrors.ErrInvalidParameters
	}
	if len(name) > models.MaxTokenNameLen ||
		len(symbol) > models.MaxTokenSymbolLen ||
		len(uri) > models.MaxTokenURILen {
		return models.PlatformToken{}, apperrors.ErrInvalidParameters
	}
	if totalSupply == 0 {
		return models.PlatformToken{}, apperrors.ErrInvalidParameters
	}
	if _, err := solana.PublicKeyFromBase58(mintAddress); err != nil {
		return models.PlatformToken{}, apperrors.ErrInvalidTokenMint
	}

	token := models.PlatformToken{
		Name:          name,
		Symbol:        symbol,
		URI:           uri,
		TotalSupply:   totalSupply,
		MintAddress:   mintAddress,
		Authority:     authority.String(),
		IsInitialized: true,
		FeeConfig: models.FeeConfig{
			TransactionFeeBps: models.DefaultTransactionFeeBps,
			FeeRecipient:      authority.String(),
			FeesEnabled:       true,
		},
		Distribution: models.TokenDistribution{
			CommunityAllocation:    percentageOf(totalSupply, models.CommunityAllocationPct),
			AssetReserveAllocation: percentageOf(totalSupply, models.AssetReserveAllocationPct),
			DevelopmentAllocation:  percentageOf(totalSupply, models.DevelopmentAllocationPct),
			LiquidityAllocation:    percentageOf(totalSupply, models.LiquidityAllocationPct),
			TeamAllocation:         percentageOf(totalSupply, models.TeamAllocationPct),
		},
		LastUpdateTimestamp: now,
	}
	if err := s.DB.SavePlatformToken(token); err != nil {
		return models.PlatformToken{}, err
	}

	log.Printf("Token de plataforma inicializado: %s (%s) com supply total %d",
		token.Name, token.Symbol, token.TotalSupply)
	return token, nil
}

// TransferAuthority nomeia o sucessor da autoridade. A nomeação não tem
// efeito até o aceite; chamadas repetidas sobrescrevem o pendente.
func (s *TokenService) TransferAuthority(
	caller, newAuthority solana.PublicKey, now time.Time,
) error {
	token, found, err := s.DB.GetPlatformToken()
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}
	if token.Authority != caller.String() {
		return apperrors.ErrUnauthorized
	}

	if err := s.DB.SetPendingAuthority(newAuthority.String(), now); err != nil {
		return err
	}
	log.Printf("Transferência de autoridade iniciada: sucessor %s nomeado", newAuthority)
	return nil
}

// AcceptAuthority completa a transferência em duas etapas. Só o sucessor
// nomeado pode aceitar; o aceite promove o pendente e o limpa.
func (s *TokenService) AcceptAuthority(caller solana.PublicKey, now time.Time) error {
	token, found, err := s.DB.GetPlatformToken()
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}
	if token.PendingAuthority == nil || *token.PendingAuthority != caller.String() {
		return apperrors.ErrUnauthorized
	}

	if err := s.DB.PromotePendingAuthority(caller.String(), now); err != nil {
		return err
	}
	log.Printf("Autoridade do token de plataforma transferida para %s", caller)
	return nil
}

// UpdateFeeConfig atualiza a configuração de taxas. A taxa é limitada a
// MaxTransactionFeeBps (10%).
func (s *TokenService) UpdateFeeConfig(
	caller solana.PublicKey, fee models.FeeConfig, now time.Time,
) error {
	token, found, err := s.DB.GetPlatformToken()
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}
	if token.Authority != caller.String() {
		return apperrors.ErrUnauthorized
	}
	if fee.TransactionFeeBps > models.MaxTransactionFeeBps {
		return apperrors.ErrInvalidParameters
	}
	if _, err := solana.PublicKeyFromBase58(fee.FeeRecipient); err != nil {
		return apperrors.ErrInvalidParameters
	}

	if err := s.DB.UpdateFeeConfig(fee, now); err != nil {
		return err
	}
	log.Printf("Taxas do token de plataforma atualizadas: %d bps (habilitadas: %t)",
		fee.TransactionFeeBps, fee.FeesEnabled)
	return nil
}

// SetTransferPause liga ou desliga a pausa global de transferências.
func (s *TokenService) SetTransferPause(
	caller solana.PublicKey, paused bool, now time.Time,
) error {
	token, found, err := s.DB.GetPlatformToken()
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}
	if token.Authority != caller.String() {
		return apperrors.ErrUnauthorized
	}

	if err := s.DB.SetTransferPause(paused, now); err != nil {
		return err
	}
	if paused {
		log.Printf("Transferências do token de plataforma pausadas por %s", caller)
	} else {
		log.Printf("Transferências do token de plataforma retomadas por %s", caller)
	}
	return nil
}

// GetPlatformToken busca o registro singleton do token de plataforma.
func (s *TokenService) GetPlatformToken() (models.PlatformToken, bool, error) {
	return s.DB.GetPlatformToken()
}

package services

import (
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/realstackxyz/realstack/apperrors"
	"github.com/realstackxyz/realstack/models"
)

// AssetStore é o contrato de persistência do registro de ativos.
type AssetStore interface {
	SaveAsset(asset models.AssetToken) error
	GetAsset(id string) (models.AssetToken, bool, error)
	GetAssetByMintAddress(mintAddress string) (models.AssetToken, bool, error)
	ListAssets() ([]models.AssetToken, error)
	UpdateAssetValuation(id string, valuation, sharePrice uint64, now time.Time) error
	MarkAssetVerified(id, verifier string, now time.Time) error
	SetAssetTradability(id string, tradable bool, now time.Time) (bool, error)
	BurnAsset(id string, now time.Time) (bool, error)
	AddIncomeDistribution(id string, amount uint64, now time.Time) error
}

// SolanaLedger é o colaborador externo que movimenta tokens de verdade
// (mint, emissão e transferência de frações). O núcleo nunca toca saldos.
type SolanaLedger interface {
	CreateMintAndTokenAccount(ownerPubKey solana.PublicKey, assetSymbol string) (solana.PublicKey, solana.PublicKey, error)
	MintTokensToAccount(mintAddress, destinationATA solana.PublicKey, amount uint64) (solana.Signature, error)
	PrepareTransferTransaction(mintAddress, fromATA, toATA, fromOwnerPubKey solana.PublicKey, amount uint64) (string, error)
}

// AssetService implementa o registro de ativos tokenizados: criação,
// avaliação, verificação, negociabilidade, queima e contabilidade de
// distribuição de renda. Toda mutação exige a autoridade do registro e
// recebe o relógio do host em `now`.
type AssetService struct {
	DB      AssetStore
	SolanaS SolanaLedger
}

// NewAssetService cria uma nova instância do serviço de ativos.
func NewAssetService(db AssetStore, solanaS SolanaLedger) *AssetService {
	return &AssetService{DB: db, SolanaS: solanaS}
}

// CreateAssetToken registra um novo ativo. Se mintAddress vier vazio, o
// mint SPL de lastro é criado on-chain e o supply de frações é emitido
// para a autoridade. Não há checagem de unicidade contra o mint; isso é
// convenção do chamador.
func (s *AssetService) CreateAssetToken(
	authority solana.PublicKey,
	mintAddress, name, symbol, category, description, uri string,
	valuation, totalShares, sharePrice uint64,
	now time.Time,
) (models.AssetToken, error) {
	if name == "" || symbol == "" {
		return models.AssetToken{}, apperrors.ErrInvalidParameters
	}
	if len(name) > models.MaxAssetNameLen {
		return models.AssetToken{}, apperrors.ErrAssetNameTooLong
	}
	if len(description) > models.MaxAssetDescriptionLen {
		return models.AssetToken{}, apperrors.ErrAssetDescriptionTooLong
	}
	if len(symbol) > models.MaxAssetSymbolLen || len(uri) > models.MaxAssetURILen {
		return models.AssetToken{}, apperrors.ErrInvalidParameters
	}
	if len(category) > models.MaxAssetCategoryLen || !models.ValidAssetCategory(category) {
		return models.AssetToken{}, apperrors.ErrInvalidAssetCategory
	}
	if valuation == 0 {
		return models.AssetToken{}, apperrors.ErrInvalidValuation
	}
	if sharePrice == 0 {
		return models.AssetToken{}, apperrors.ErrSharePriceTooLow
	}
	if totalShares == 0 {
		return models.AssetToken{}, apperrors.ErrInvalidParameters
	}
	if totalShares > models.MaxTotalShares {
		return models.AssetToken{}, apperrors.ErrTotalSharesExceedsMaximum
	}

	if mintAddress == "" {
		if s.SolanaS == nil {
			return models.AssetToken{}, apperrors.ErrInvalidTokenMint
		}
		mint, ata, err := s.SolanaS.CreateMintAndTokenAccount(authority, symbol)
		if err != nil {
			return models.AssetToken{}, fmt.Errorf("falha ao criar mint de lastro: %w", err)
		}
		if _, err := s.SolanaS.MintTokensToAccount(mint, ata, totalShares); err != nil {
			return models.AssetToken{}, fmt.Errorf("falha ao emitir frações do ativo: %w", err)
		}
		mintAddress = mint.String()
	} else if _, err := solana.PublicKeyFromBase58(mintAddress); err != nil {
		return models.AssetToken{}, apperrors.ErrInvalidTokenMint
	}

	asset := models.AssetToken{
		ID:                    uuid.New().String(),
		Authority:             authority.String(),
		MintAddress:           mintAddress,
		Name:                  name,
		Symbol:                symbol,
		Category:              category,
		Description:           description,
		URI:                   uri,
		Valuation:             valuation,
		TotalShares:           totalShares,
		InitialSharePrice:     sharePrice,
		CurrentSharePrice:     sharePrice,
		DistributionFrequency: models.FrequencyMonthly,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.DB.SaveAsset(asset); err != nil {
		return models.AssetToken{}, err
	}

	log.Printf("Ativo tokenizado: %s (avaliação: %d, frações: %d, preço: %d)",
		asset.Name, valuation, totalShares, sharePrice)
	return asset, nil
}

// UpdateAssetValuation sobrescreve avaliação e preço corrente da fração.
// Sem validação de faixa além do tipo.
func (s *AssetService) UpdateAssetValuation(
	caller solana.PublicKey, assetID string,
	newValuation, newSharePrice uint64, now time.Time,
) (models.AssetToken, error) {
	asset, found, err := s.DB.GetAsset(assetID)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !found {
		return models.AssetToken{}, apperrors.ErrAssetNotFound
	}
	if asset.Authority != caller.String() {
		return models.AssetToken{}, apperrors.ErrUnauthorized
	}

	if err := s.DB.UpdateAssetValuation(assetID, newValuation, newSharePrice, now); err != nil {
		return models.AssetToken{}, err
	}

	asset.Valuation = newValuation
	asset.CurrentSharePrice = newSharePrice
	asset.UpdatedAt = now
	log.Printf("Avaliação atualizada para o ativo %s: %d (preço da fração: %d)",
		asset.Name, newValuation, newSharePrice)
	return asset, nil
}

// VerifyAsset registra a verificação do ativo pelo verificador informado.
// Uma nova verificação sobrescreve verificador e timestamp anteriores;
// não há guarda contra re-verificação.
func (s *AssetService) VerifyAsset(
	verifier solana.PublicKey, assetID string, now time.Time,
) (models.AssetToken, error) {
	asset, found, err := s.DB.GetAsset(assetID)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !found {
		return models.AssetToken{}, apperrors.ErrAssetNotFound
	}

	verifierStr := verifier.String()
	if err := s.DB.MarkAssetVerified(assetID, verifierStr, now); err != nil {
		return models.AssetToken{}, err
	}

	asset.IsVerified = true
	asset.Verifier = &verifierStr
	asset.VerifiedAt = &now
	asset.UpdatedAt = now
	log.Printf("Ativo %s verificado por %s", asset.Name, verifierStr)
	return asset, nil
}

// ToggleTradability ajusta a negociabilidade do ativo. Depois da queima a
// negociabilidade fica fixada em false para sempre.
func (s *AssetService) ToggleTradability(
	caller solana.PublicKey, assetID string, tradable bool, now time.Time,
) (models.AssetToken, error) {
	asset, found, err := s.DB.GetAsset(assetID)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !found {
		return models.AssetToken{}, apperrors.ErrAssetNotFound
	}
	if asset.Authority != caller.String() {
		return models.AssetToken{}, apperrors.ErrUnauthorized
	}

	ok, err := s.DB.SetAssetTradability(assetID, tradable, now)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !ok {
		return models.AssetToken{}, apperrors.ErrAssetBurned
	}

	asset.IsTradable = tradable
	asset.UpdatedAt = now
	log.Printf("Negociabilidade do ativo %s ajustada para %v", asset.Name, tradable)
	return asset, nil
}

// BurnAssetToken desativa o ativo em definitivo. A transição é terminal:
// is_burned nunca é revertido e a negociabilidade fica fixada em false.
func (s *AssetService) BurnAssetToken(
	caller solana.PublicKey, assetID string, now time.Time,
) (models.AssetToken, error) {
	asset, found, err := s.DB.GetAsset(assetID)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !found {
		return models.AssetToken{}, apperrors.ErrAssetNotFound
	}
	if asset.Authority != caller.String() {
		return models.AssetToken{}, apperrors.ErrUnauthorized
	}
	if asset.IsBurned {
		return models.AssetToken{}, apperrors.ErrAssetAlreadyBurned
	}

	ok, err := s.DB.BurnAsset(assetID, now)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !ok {
		// Outro writer queimou entre a leitura e o compare-and-set.
		return models.AssetToken{}, apperrors.ErrAssetAlreadyBurned
	}

	asset.IsBurned = true
	asset.IsTradable = false
	asset.UpdatedAt = now
	log.Printf("Ativo queimado: %s", asset.Name)
	return asset, nil
}

// DistributeIncome registra a contabilidade agregada de uma distribuição
// de renda. O pagamento por detentor é delegado ao ledger externo; aqui só
// o total acumulado e os timestamps mudam.
func (s *AssetService) DistributeIncome(
	caller solana.PublicKey, assetID string, amount uint64, now time.Time,
) (models.AssetToken, error) {
	asset, found, err := s.DB.GetAsset(assetID)
	if err != nil {
		return models.AssetToken{}, err
	}
	if !found {
		return models.AssetToken{}, apperrors.ErrAssetNotFound
	}
	if asset.Authority != caller.String() {
		return models.AssetToken{}, apperrors.ErrUnauthorized
	}
	if asset.IsBurned {
		return models.AssetToken{}, apperrors.ErrAssetBurned
	}
	if amount == 0 {
		return models.AssetToken{}, apperrors.ErrInvalidDistributionAmount
	}
	if interval := asset.DistributionFrequency.MinInterval(); interval > 0 && asset.LastIncomeDistribution != nil {
		if now.Before(asset.LastIncomeDistribution.Add(interval)) {
			return models.AssetToken{}, apperrors.ErrDistributionTooFrequent
		}
	}

	newTotal, err := checkedAddU64(asset.TotalIncomeDistributed, amount)
	if err != nil {
		return models.AssetToken{}, err
	}

	if err := s.DB.AddIncomeDistribution(assetID, amount, now); err != nil {
		return models.AssetToken{}, err
	}

	asset.TotalIncomeDistributed = newTotal
	asset.LastIncomeDistribution = &now
	asset.UpdatedAt = now
	log.Printf("Renda distribuída para o ativo %s: %d (total acumulado: %d)",
		asset.Name, amount, newTotal)
	return asset, nil
}

// PrepareIncomePayout constrói (sem assinar com a chave do pagador) a
// transação SPL que paga a parcela de renda de um detentor, no padrão
// prepara/completa: o chamador assina fora e envia pelo ledger externo.
func (s *AssetService) PrepareIncomePayout(
	caller solana.PublicKey, assetID, recipient string, amount uint64,
) (string, error) {
	if s.SolanaS == nil {
		return "", apperrors.ErrInvalidTokenAccount
	}
	asset, found, err := s.DB.GetAsset(assetID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apperrors.ErrAssetNotFound
	}
	if asset.Authority != caller.String() {
		return "", apperrors.ErrUnauthorized
	}
	if asset.IsBurned {
		return "", apperrors.ErrAssetBurned
	}
	if amount == 0 {
		return "", apperrors.ErrInvalidDistributionAmount
	}

	recipientPubKey, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", apperrors.ErrInvalidTokenAccount
	}
	mint, err := solana.PublicKeyFromBase58(asset.MintAddress)
	if err != nil {
		return "", apperrors.ErrInvalidTokenMint
	}

	fromATA, _, err := solana.FindAssociatedTokenAddress(caller, mint)
	if err != nil {
		return "", fmt.Errorf("falha ao encontrar ATA do pagador: %w", err)
	}
	toATA, _, err := solana.FindAssociatedTokenAddress(recipientPubKey, mint)
	if err != nil {
		return "", fmt.Errorf("falha ao encontrar ATA do detentor: %w", err)
	}

	return s.SolanaS.PrepareTransferTransaction(mint, fromATA, toATA, caller, amount)
}

// GetAsset busca um ativo pelo ID.
func (s *AssetService) GetAsset(assetID string) (models.AssetToken, bool, error) {
	return s.DB.GetAsset(assetID)
}

// ListAssets lista todos os ativos registrados.
func (s *AssetService) ListAssets() ([]models.AssetToken, error) {
	return s.DB.ListAssets()
}

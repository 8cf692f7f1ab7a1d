package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/realstackxyz/realstack/models"
)

const assetColumns = `id, authority, mint_address, name, symbol, category, description, uri,
	valuation, total_shares, initial_share_price, current_share_price,
	is_verified, verifier, verified_at, is_tradable, is_burned, can_mint_additional,
	liquidity_pool, distribution_frequency, last_income_distribution, total_income_distributed,
	created_at, updated_at, last_chain_sync`

// SaveAsset insere um novo registro de ativo.
func (d *DB) SaveAsset(asset models.AssetToken) error {
	query := `INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := d.Exec(query,
		asset.ID, asset.Authority, asset.MintAddress,
		asset.Name, asset.Symbol, asset.Category, asset.Description, asset.URI,
		u64(asset.Valuation), u64(asset.TotalShares), u64(asset.InitialSharePrice), u64(asset.CurrentSharePrice),
		asset.IsVerified, asset.Verifier, asset.VerifiedAt,
		asset.IsTradable, asset.IsBurned, asset.CanMintAdditional,
		asset.LiquidityPool, asset.DistributionFrequency,
		asset.LastIncomeDistribution, u64(asset.TotalIncomeDistributed),
		asset.CreatedAt, asset.UpdatedAt, asset.LastChainSync,
	)
	if err != nil {
		return fmt.Errorf("falha ao salvar ativo: %w", err)
	}
	return nil
}

// GetAsset busca um ativo pelo ID.
func (d *DB) GetAsset(id string) (models.AssetToken, bool, error) {
	var asset models.AssetToken
	err := d.Get(&asset, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AssetToken{}, false, nil
	}
	if err != nil {
		return models.AssetToken{}, false, fmt.Errorf("falha ao buscar ativo: %w", err)
	}
	return asset, true, nil
}

// GetAssetByMintAddress busca um ativo pelo mint SPL que o lastreia.
func (d *DB) GetAssetByMintAddress(mintAddress string) (models.AssetToken, bool, error) {
	var asset models.AssetToken
	err := d.Get(&asset, `SELECT `+assetColumns+` FROM assets WHERE mint_address = $1`, mintAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AssetToken{}, false, nil
	}
	if err != nil {
		return models.AssetToken{}, false, fmt.Errorf("falha ao buscar ativo por mint: %w", err)
	}
	return asset, true, nil
}

// ListAssets retorna todos os ativos, mais recentes primeiro.
func (d *DB) ListAssets() ([]models.AssetToken, error) {
	var assets []models.AssetToken
	err := d.Select(&assets, `SELECT `+assetColumns+` FROM assets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar ativos: %w", err)
	}
	return assets, nil
}

// UpdateAssetValuation sobrescreve avaliação e preço corrente da fração.
func (d *DB) UpdateAssetValuation(id string, valuation, sharePrice uint64, now time.Time) error {
	query := `UPDATE assets SET valuation = $1, current_share_price = $2, updated_at = $3 WHERE id = $4`
	_, err := d.Exec(query, u64(valuation), u64(sharePrice), now, id)
	if err != nil {
		return fmt.Errorf("falha ao atualizar avaliação: %w", err)
	}
	return nil
}

// MarkAssetVerified registra a verificação. Uma nova verificação sobrescreve
// verificador e timestamp anteriores.
func (d *DB) MarkAssetVerified(id, verifier string, now time.Time) error {
	query := `UPDATE assets SET is_verified = TRUE, verifier = $1, verified_at = $2, updated_at = $2 WHERE id = $3`
	_, err := d.Exec(query, verifier, now, id)
	if err != nil {
		return fmt.Errorf("falha ao verificar ativo: %w", err)
	}
	return nil
}

// SetAssetTradability ajusta a negociabilidade. A guarda NOT is_burned fixa
// is_tradable = FALSE para sempre depois da queima; retorna false se a
// guarda bloqueou a escrita.
func (d *DB) SetAssetTradability(id string, tradable bool, now time.Time) (bool, error) {
	query := `UPDATE assets SET is_tradable = $1, updated_at = $2 WHERE id = $3 AND NOT is_burned`
	res, err := d.Exec(query, tradable, now, id)
	if err != nil {
		return false, fmt.Errorf("falha ao ajustar negociabilidade: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BurnAsset marca o ativo como queimado (transição terminal, compare-and-set).
// Retorna false se o ativo já estava queimado.
func (d *DB) BurnAsset(id string, now time.Time) (bool, error) {
	query := `UPDATE assets SET is_burned = TRUE, is_tradable = FALSE, updated_at = $1
		WHERE id = $2 AND NOT is_burned`
	res, err := d.Exec(query, now, id)
	if err != nil {
		return false, fmt.Errorf("falha ao queimar ativo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddIncomeDistribution acumula renda distribuída no agregado do ativo.
// O serviço já validou overflow sobre o registro lido; a soma no SQL evita
// perder atualizações concorrentes.
func (d *DB) AddIncomeDistribution(id string, amount uint64, now time.Time) error {
	query := `UPDATE assets SET total_income_distributed = total_income_distributed + $1,
		last_income_distribution = $2, updated_at = $2 WHERE id = $3`
	_, err := d.Exec(query, u64(amount), now, id)
	if err != nil {
		return fmt.Errorf("falha ao registrar distribuição de renda: %w", err)
	}
	return nil
}

// TouchAssetChainSync marca atividade on-chain observada para o mint.
func (d *DB) TouchAssetChainSync(mintAddress string, now time.Time) error {
	query := `UPDATE assets SET last_chain_sync = $1 WHERE mint_address = $2`
	_, err := d.Exec(query, now, mintAddress)
	if err != nil {
		return fmt.Errorf("falha ao marcar sincronia on-chain: %w", err)
	}
	return nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/realstackxyz/realstack/models"
)

// platformTokenRow achata o registro singleton para o StructScan do sqlx;
// FeeConfig e TokenDistribution são structs aninhadas no modelo.
type platformTokenRow struct {
	Name        string `db:"name"`
	Symbol      string `db:"symbol"`
	URI         string `db:"uri"`
	TotalSupply uint64 `db:"total_supply"`
	MintAddress string `db:"mint_address"`

	Authority        string  `db:"authority"`
	PendingAuthority *string `db:"pending_authority"`

	IsInitialized   bool `db:"is_initialized"`
	TransfersPaused bool `db:"transfers_paused"`

	TransactionFeeBps uint16 `db:"transaction_fee_bps"`
	FeeRecipient      string `db:"fee_recipient"`
	FeesEnabled       bool   `db:"fees_enabled"`

	CommunityAllocation    uint64 `db:"community_allocation"`
	AssetReserveAllocation uint64 `db:"asset_reserve_allocation"`
	DevelopmentAllocation  uint64 `db:"development_allocation"`
	LiquidityAllocation    uint64 `db:"liquidity_allocation"`
	TeamAllocation         uint64 `db:"team_allocation"`

	LastUpdateTimestamp time.Time `db:"last_update_timestamp"`
}

func (r platformTokenRow) toModel() models.PlatformToken {
	return models.PlatformToken{
		Name:             r.Name,
		Symbol:           r.Symbol,
		URI:              r.URI,
		TotalSupply:      r.TotalSupply,
		MintAddress:      r.MintAddress,
		Authority:        r.Authority,
		PendingAuthority: r.PendingAuthority,
		IsInitialized:    r.IsInitialized,
		TransfersPaused:  r.TransfersPaused,
		FeeConfig: models.FeeConfig{
			TransactionFeeBps: r.TransactionFeeBps,
			FeeRecipient:      r.FeeRecipient,
			FeesEnabled:       r.FeesEnabled,
		},
		Distribution: models.TokenDistribution{
			CommunityAllocation:    r.CommunityAllocation,
			AssetReserveAllocation: r.AssetReserveAllocation,
			DevelopmentAllocation:  r.DevelopmentAllocation,
			LiquidityAllocation:    r.LiquidityAllocation,
			TeamAllocation:         r.TeamAllocation,
		},
		LastUpdateTimestamp: r.LastUpdateTimestamp,
	}
}

// SavePlatformToken insere o registro singleton do token de plataforma.
// Uma segunda inicialização colide na chave do singleton.
func (d *DB) SavePlatformToken(t models.PlatformToken) error {
	query := `INSERT INTO platform_token
		(singleton, name, symbol, uri, total_supply, mint_address, authority, pending_authority,
		 is_initialized, transfers_paused,
		 transaction_fee_bps, fee_recipient, fees_enabled,
		 community_allocation, asset_reserve_allocation, development_allocation,
		 liquidity_allocation, team_allocation, last_update_timestamp)
		VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := d.Exec(query,
		t.Name, t.Symbol, t.URI, u64(t.TotalSupply), t.MintAddress,
		t.Authority, t.PendingAuthority, t.IsInitialized, t.TransfersPaused,
		int32(t.FeeConfig.TransactionFeeBps), t.FeeConfig.FeeRecipient, t.FeeConfig.FeesEnabled,
		u64(t.Distribution.CommunityAllocation), u64(t.Distribution.AssetReserveAllocation),
		u64(t.Distribution.DevelopmentAllocation), u64(t.Distribution.LiquidityAllocation),
		u64(t.Distribution.TeamAllocation), t.LastUpdateTimestamp,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("falha ao salvar token de plataforma: %w", err)
	}
	return nil
}

// GetPlatformToken busca o registro singleton do token de plataforma.
func (d *DB) GetPlatformToken() (models.PlatformToken, bool, error) {
	var row platformTokenRow
	query := `SELECT name, symbol, uri, total_supply, mint_address, authority, pending_authority,
		is_initialized, transfers_paused,
		transaction_fee_bps, fee_recipient, fees_enabled,
		community_allocation, asset_reserve_allocation, development_allocation,
		liquidity_allocation, team_allocation, last_update_timestamp
		FROM platform_token WHERE singleton`
	err := d.Get(&row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlatformToken{}, false, nil
	}
	if err != nil {
		return models.PlatformToken{}, false, fmt.Errorf("falha ao buscar token de plataforma: %w", err)
	}
	return row.toModel(), true, nil
}

// SetPendingAuthority registra o sucessor nomeado (primeira etapa da
// transferência de autoridade).
func (d *DB) SetPendingAuthority(pending string, now time.Time) error {
	query := `UPDATE platform_token SET pending_authority = $1, last_update_timestamp = $2 WHERE singleton`
	_, err := d.Exec(query, pending, now)
	if err != nil {
		return fmt.Errorf("falha ao registrar autoridade pendente: %w", err)
	}
	return nil
}

// PromotePendingAuthority efetiva a transferência de autoridade (segunda
// etapa) e limpa o campo pendente.
func (d *DB) PromotePendingAuthority(newAuthority string, now time.Time) error {
	query := `UPDATE platform_token SET authority = $1, pending_authority = NULL,
		last_update_timestamp = $2 WHERE singleton`
	_, err := d.Exec(query, newAuthority, now)
	if err != nil {
		return fmt.Errorf("falha ao efetivar transferência de autoridade: %w", err)
	}
	return nil
}

// UpdateFeeConfig sobrescreve a configuração de taxas por inteiro.
func (d *DB) UpdateFeeConfig(fee models.FeeConfig, now time.Time) error {
	query := `UPDATE platform_token SET transaction_fee_bps = $1, fee_recipient = $2,
		fees_enabled = $3, last_update_timestamp = $4 WHERE singleton`
	_, err := d.Exec(query, int32(fee.TransactionFeeBps), fee.FeeRecipient, fee.FeesEnabled, now)
	if err != nil {
		return fmt.Errorf("falha ao atualizar configuração de taxas: %w", err)
	}
	return nil
}

// SetTransferPause ajusta a pausa emergencial de transferências.
func (d *DB) SetTransferPause(paused bool, now time.Time) error {
	query := `UPDATE platform_token SET transfers_paused = $1, last_update_timestamp = $2 WHERE singleton`
	_, err := d.Exec(query, paused, now)
	if err != nil {
		return fmt.Errorf("falha ao ajustar pausa de transferências: %w", err)
	}
	return nil
}

package models

import "time"

const (
	MaxTokenNameLen   = 64
	MaxTokenSymbolLen = 16
	MaxTokenURILen    = 128

	// MaxTransactionFeeBps limita a taxa de transação a 10%.
	MaxTransactionFeeBps uint16 = 1000
	// DefaultTransactionFeeBps é a taxa aplicada na inicialização (0,25%).
	DefaultTransactionFeeBps uint16 = 25
)

// Percentuais fixos de distribuição do supply na inicialização.
// Somam 100, mas o arredondamento para baixo de cada bucket pode deixar
// até 4 unidades do supply sem alocação; isso é aceito, não reconciliado.
const (
	CommunityAllocationPct    = 40
	AssetReserveAllocationPct = 25
	DevelopmentAllocationPct  = 20
	LiquidityAllocationPct    = 10
	TeamAllocationPct         = 5
)

// FeeConfig guarda a configuração de taxas do token de plataforma.
type FeeConfig struct {
	TransactionFeeBps uint16 `json:"transaction_fee_bps" db:"transaction_fee_bps"`
	FeeRecipient      string `json:"fee_recipient" db:"fee_recipient"`
	FeesEnabled       bool   `json:"fees_enabled" db:"fees_enabled"`
}

// TokenDistribution guarda os buckets de alocação calculados uma única vez
// na inicialização.
type TokenDistribution struct {
	CommunityAllocation    uint64 `json:"community_allocation" db:"community_allocation"`
	AssetReserveAllocation uint64 `json:"asset_reserve_allocation" db:"asset_reserve_allocation"`
	DevelopmentAllocation  uint64 `json:"development_allocation" db:"development_allocation"`
	LiquidityAllocation    uint64 `json:"liquidity_allocation" db:"liquidity_allocation"`
	TeamAllocation         uint64 `json:"team_allocation" db:"team_allocation"`
}

// PlatformToken é o registro singleton do token de plataforma (RSTK).
// Nenhuma operação aqui movimenta saldos; mint, queima e transferências
// são responsabilidade do ledger SPL externo.
type PlatformToken struct {
	Name        string `json:"name" db:"name"`
	Symbol      string `json:"symbol" db:"symbol"`
	URI         string `json:"uri" db:"uri"`
	TotalSupply uint64 `json:"total_supply" db:"total_supply"`
	MintAddress string `json:"mint_address" db:"mint_address"`

	Authority string `json:"authority" db:"authority"`
	// PendingAuthority guarda o sucessor nomeado na transferência de
	// autoridade em duas etapas; só passa a valer após o aceite.
	PendingAuthority *string `json:"pending_authority,omitempty" db:"pending_authority"`

	IsInitialized   bool `json:"is_initialized" db:"is_initialized"`
	TransfersPaused bool `json:"transfers_paused" db:"transfers_paused"`

	FeeConfig    FeeConfig         `json:"fee_config"`
	Distribution TokenDistribution `json:"distribution"`

	LastUpdateTimestamp time.Time `json:"last_update_timestamp" db:"last_update_timestamp"`
}

package models

import "time"

// Limites de tamanho dos campos descritivos. O schema usa VARCHAR com os
// mesmos limites, então o tamanho máximo serializado de cada registro é
// conhecido estaticamente.
const (
	MaxAssetNameLen        = 100
	MaxAssetSymbolLen      = 16
	MaxAssetCategoryLen    = 32
	MaxAssetDescriptionLen = 500
	MaxAssetURILen         = 200

	// MaxTotalShares é o teto de frações emitidas por ativo.
	MaxTotalShares uint64 = 1_000_000_000_000
)

// DistributionFrequency define a cadência de distribuição de renda de um ativo.
type DistributionFrequency int16

const (
	FrequencyMonthly DistributionFrequency = iota
	FrequencyQuarterly
	FrequencySemiAnnually
	FrequencyAnnually
	FrequencyCustom
)

// Valid informa se o valor corresponde a uma frequência conhecida.
func (f DistributionFrequency) Valid() bool {
	return f >= FrequencyMonthly && f <= FrequencyCustom
}

func (f DistributionFrequency) String() string {
	switch f {
	case FrequencyMonthly:
		return "monthly"
	case FrequencyQuarterly:
		return "quarterly"
	case FrequencySemiAnnually:
		return "semi-annually"
	case FrequencyAnnually:
		return "annually"
	case FrequencyCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// MinInterval retorna a janela mínima entre distribuições de renda.
// Custom não impõe janela (fica a cargo da autoridade do ativo).
func (f DistributionFrequency) MinInterval() time.Duration {
	const day = 24 * time.Hour
	switch f {
	case FrequencyMonthly:
		return 28 * day
	case FrequencyQuarterly:
		return 90 * day
	case FrequencySemiAnnually:
		return 180 * day
	case FrequencyAnnually:
		return 365 * day
	default:
		return 0
	}
}

// AssetCategories lista as categorias aceitas pela plataforma.
var AssetCategories = []string{
	"real-estate",
	"business",
	"collectible",
	"vehicle",
	"equipment",
	"land",
	"commodity",
	"other",
}

// ValidAssetCategory informa se a categoria é aceita.
func ValidAssetCategory(category string) bool {
	for _, c := range AssetCategories {
		if c == category {
			return true
		}
	}
	return false
}

// AssetToken representa um ativo do mundo real tokenizado na plataforma.
// A autoridade (chave pública Solana, base58) é a única identidade que
// pode mutar o registro; leitura é livre.
type AssetToken struct {
	ID        string `json:"id" db:"id"`
	Authority string `json:"authority" db:"authority"`
	// MintAddress referencia o mint SPL que lastreia as frações do ativo.
	MintAddress string `json:"mint_address" db:"mint_address"`

	Name        string `json:"name" db:"name"`
	Symbol      string `json:"symbol" db:"symbol"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
	URI         string `json:"uri" db:"uri"`

	Valuation         uint64 `json:"valuation" db:"valuation"`
	TotalShares       uint64 `json:"total_shares" db:"total_shares"`
	InitialSharePrice uint64 `json:"initial_share_price" db:"initial_share_price"`
	CurrentSharePrice uint64 `json:"current_share_price" db:"current_share_price"`

	IsVerified bool       `json:"is_verified" db:"is_verified"`
	Verifier   *string    `json:"verifier,omitempty" db:"verifier"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" db:"verified_at"`

	IsTradable        bool `json:"is_tradable" db:"is_tradable"`
	IsBurned          bool `json:"is_burned" db:"is_burned"`
	CanMintAdditional bool `json:"can_mint_additional" db:"can_mint_additional"`

	LiquidityPool *string `json:"liquidity_pool,omitempty" db:"liquidity_pool"`

	DistributionFrequency  DistributionFrequency `json:"distribution_frequency" db:"distribution_frequency"`
	LastIncomeDistribution *time.Time            `json:"last_income_distribution,omitempty" db:"last_income_distribution"`
	TotalIncomeDistributed uint64                `json:"total_income_distributed" db:"total_income_distributed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// LastChainSync marca a última vez que o listener observou atividade
	// on-chain envolvendo o mint deste ativo.
	LastChainSync *time.Time `json:"last_chain_sync,omitempty" db:"last_chain_sync"`
}

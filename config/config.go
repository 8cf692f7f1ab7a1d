// Package config carrega a configuração do serviço a partir de variáveis
// de ambiente.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config reúne toda a configuração do serviço.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"./storage/migrations"`

	SolanaRPCURL      string `env:"SOLANA_RPC_URL" envDefault:"https://api.devnet.solana.com"`
	SolanaWSURL       string `env:"SOLANA_WS_URL" envDefault:"wss://api.devnet.solana.com"`
	SolanaFeePayerKey string `env:"SOLANA_FEE_PAYER_KEY"`

	// ListenerEnabled liga o listener de reconciliação com o ledger.
	// Exige SolanaFeePayerKey configurada.
	ListenerEnabled bool `env:"LISTENER_ENABLED" envDefault:"false"`
}

// Load lê a configuração do ambiente.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

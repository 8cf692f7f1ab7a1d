package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/realstackxyz/realstack/blockchain_listener"
	"github.com/realstackxyz/realstack/config"
	"github.com/realstackxyz/realstack/handlers"
	"github.com/realstackxyz/realstack/services"
	"github.com/realstackxyz/realstack/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configuração: %v", err)
	}

	db, err := storage.NewDB(cfg.DatabaseURL, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("Falha fatal ao conectar ao banco de dados e aplicar migrações: %v", err)
	}
	defer db.Close()

	// Sem chave do FeePayer o serviço ainda sobe, mas sem criação de mints
	// nem preparação de pagamentos on-chain.
	var solanaService *services.SolanaIntegrationService
	if cfg.SolanaFeePayerKey != "" {
		solanaService, err = services.NewSolanaIntegrationService(cfg.SolanaRPCURL, cfg.SolanaFeePayerKey)
		if err != nil {
			log.Fatalf("Falha ao inicializar serviço Solana: %v", err)
		}
	} else {
		log.Println("SOLANA_FEE_PAYER_KEY ausente; integração Solana desabilitada.")
	}

	var ledger services.SolanaLedger
	if solanaService != nil {
		ledger = solanaService
	}
	assetService := services.NewAssetService(db, ledger)
	governanceService := services.NewGovernanceService(db)
	tokenService := services.NewTokenService(db)

	assetHandler := handlers.NewAssetHandler(assetService)
	governanceHandler := handlers.NewGovernanceHandler(governanceService)
	tokenHandler := handlers.NewTokenHandler(tokenService)

	if cfg.ListenerEnabled && solanaService != nil {
		listener := blockchain_listener.NewBlockchainListener(
			cfg.SolanaRPCURL, cfg.SolanaWSURL, db, solanaService.FeePayer.PublicKey(),
		)
		go func() {
			if err := listener.StartListening(context.Background()); err != nil {
				log.Printf("Listener da blockchain encerrado: %v", err)
			}
		}()
		log.Println("Listener da blockchain iniciado.")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/assets", func(r chi.Router) {
		r.Post("/", assetHandler.CreateAsset)
		r.Get("/", assetHandler.ListAssets)
		r.Get("/{id}", assetHandler.GetAssetByID)
		r.Put("/{id}/valuation", assetHandler.UpdateValuation)
		r.Post("/{id}/verify", assetHandler.VerifyAsset)
		r.Put("/{id}/tradability", assetHandler.SetTradability)
		r.Post("/{id}/burn", assetHandler.BurnAsset)
		r.Post("/{id}/income", assetHandler.DistributeIncome)
		r.Post("/{id}/income/prepare-payout", assetHandler.PrepareIncomePayout)
	})

	r.Route("/governance", func(r chi.Router) {
		r.Post("/config", governanceHandler.InitConfig)
		r.Put("/config", governanceHandler.UpdateConfig)
		r.Get("/config", governanceHandler.GetConfig)
	})

	r.Route("/proposals", func(r chi.Router) {
		r.Post("/", governanceHandler.CreateProposal)
		r.Get("/", governanceHandler.ListProposals)
		r.Get("/{id}", governanceHandler.GetProposalByID)
		r.Post("/{id}/votes", governanceHandler.Vote)
		r.Get("/{id}/votes", governanceHandler.ListVotes)
		r.Post("/{id}/execute", governanceHandler.ExecuteProposal)
	})

	r.Route("/token", func(r chi.Router) {
		r.Post("/initialize", tokenHandler.Initialize)
		r.Get("/", tokenHandler.GetToken)
		r.Post("/transfer-authority", tokenHandler.TransferAuthority)
		r.Post("/accept-authority", tokenHandler.AcceptAuthority)
		r.Put("/fees", tokenHandler.UpdateFees)
		r.Put("/pause", tokenHandler.SetPause)
	})

	fmt.Printf("Servidor backend rodando em %s...\n", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

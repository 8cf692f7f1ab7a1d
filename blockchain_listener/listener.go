// Package blockchain_listener mantém o registro interno reconciliado com o
// ledger SPL: observa transações que mencionam o FeePayer e marca os ativos
// afetados como sincronizados. O registro interno nunca é a fonte de verdade
// de saldos; ele só acompanha.
package blockchain_listener

import (
	"context"
	"log"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/realstackxyz/realstack/models"
)

// AssetSyncStore é o recorte de storage de que o listener precisa.
type AssetSyncStore interface {
	GetAssetByMintAddress(mintAddress string) (models.AssetToken, bool, error)
	TouchAssetChainSync(mintAddress string, now time.Time) error
}

// BlockchainListener escuta eventos na Solana para manter o registro de
// ativos sincronizado com o ledger.
type BlockchainListener struct {
	RPCClient  *rpc.Client
	WSEndpoint string
	DB         AssetSyncStore
	FeePayerPK solana.PublicKey
}

// NewBlockchainListener cria uma nova instância do listener.
func NewBlockchainListener(rpcEndpoint, wsEndpoint string, db AssetSyncStore, feePayer solana.PublicKey) *BlockchainListener {
	return &BlockchainListener{
		RPCClient:  rpc.New(rpcEndpoint),
		WSEndpoint: wsEndpoint,
		DB:         db,
		FeePayerPK: feePayer,
	}
}

// StartListening conecta ao WebSocket e processa transações finalizadas que
// mencionam o FeePayer até o contexto ser cancelado. Erros de recepção
// derrubam a subscrição; o chamador decide se reconecta.
func (l *BlockchainListener) StartListening(ctx context.Context) error {
	log.Println("Iniciando listener da blockchain...")

	wsClient, err := ws.Connect(ctx, l.WSEndpoint)
	if err != nil {
		return err
	}
	defer wsClient.Close()

	sub, err := wsClient.LogsSubscribeMentions(l.FeePayerPK, rpc.CommitmentFinalized)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Erro ao receber evento do WebSocket: %v", err)
			return err
		}

		if got.Value.Err != nil {
			log.Printf("Transação %s falhou on-chain: %v", got.Value.Signature, got.Value.Err)
			continue
		}
		l.ProcessTransaction(ctx, got.Value.Signature)
	}
}

// ProcessTransaction busca os detalhes de uma transação finalizada e marca
// os ativos cujos mints aparecem em instruções SPL Token.
func (l *BlockchainListener) ProcessTransaction(ctx context.Context, signature solana.Signature) {
	maxVersion := uint64(0)
	txResp, err := l.RPCClient.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentFinalized,
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		log.Printf("Falha ao obter detalhes da transação %s: %v", signature, err)
		return
	}
	if txResp == nil || txResp.Transaction == nil {
		log.Printf("Detalhes da transação %s vazios.", signature)
		return
	}

	tx, err := txResp.Transaction.GetTransaction()
	if err != nil {
		log.Printf("Falha ao decodificar transação %s: %v", signature, err)
		return
	}

	for _, ix := range tx.Message.Instructions {
		programID, err := tx.Message.Program(ix.ProgramIDIndex)
		if err != nil || !programID.Equals(token.ProgramID) {
			continue
		}

		accounts, err := ix.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			log.Printf("Falha ao resolver contas da instrução em %s: %v", signature, err)
			continue
		}
		decoded, err := token.DecodeInstruction(accounts, ix.Data)
		if err != nil {
			// Instrução SPL em formato que não decodificamos; ignorar.
			continue
		}

		switch impl := decoded.Impl.(type) {
		case *token.MintTo:
			l.handleMintTo(signature, impl)
		case *token.Transfer:
			l.handleTransfer(ctx, signature, impl)
		}
	}
}

// handleMintTo processa uma instrução MintTo observada on-chain.
func (l *BlockchainListener) handleMintTo(signature solana.Signature, ix *token.MintTo) {
	mint := ix.GetMintAccount().PublicKey.String()

	asset, found, err := l.DB.GetAssetByMintAddress(mint)
	if err != nil {
		log.Printf("Erro ao buscar ativo por MintAddress %s: %v", mint, err)
		return
	}
	if !found {
		log.Printf("Ativo para MintAddress %s não encontrado no registro interno. Ignorando.", mint)
		return
	}

	if !asset.CanMintAdditional {
		// Emissão adicional observada num mint que deveria estar travado.
		log.Printf("ALERTA: emissão adicional detectada no mint %s do ativo %s (tx %s)",
			mint, asset.Symbol, signature)
	}
	l.touchSync(mint, asset.Symbol)
}

// handleTransfer processa uma instrução Transfer observada on-chain. O mint
// não vem na instrução; é lido da conta de origem.
func (l *BlockchainListener) handleTransfer(ctx context.Context, signature solana.Signature, ix *token.Transfer) {
	source := ix.GetSourceAccount().PublicKey

	sourceAccountInfo, err := l.RPCClient.GetAccountInfo(ctx, source)
	if err != nil {
		log.Printf("Falha ao obter info da conta de origem %s: %v", source, err)
		return
	}

	var sourceTokenAccount token.Account
	if err := bin.NewBinDecoder(sourceAccountInfo.Value.Data.GetBinary()).Decode(&sourceTokenAccount); err != nil {
		log.Printf("Falha ao decodificar conta de origem %s: %v", source, err)
		return
	}
	mint := sourceTokenAccount.Mint.String()

	asset, found, err := l.DB.GetAssetByMintAddress(mint)
	if err != nil {
		log.Printf("Erro ao buscar ativo por MintAddress %s: %v", mint, err)
		return
	}
	if !found {
		log.Printf("Ativo para MintAddress %s não encontrado no registro interno. Ignorando transferência.", mint)
		return
	}

	if asset.IsBurned || !asset.IsTradable {
		log.Printf("ALERTA: transferência on-chain do ativo %s com negociação bloqueada no registro (tx %s)",
			asset.Symbol, signature)
	}
	l.touchSync(mint, asset.Symbol)
}

func (l *BlockchainListener) touchSync(mint, symbol string) {
	if err := l.DB.TouchAssetChainSync(mint, time.Now().UTC()); err != nil {
		log.Printf("Falha ao marcar sincronia do ativo %s: %v", symbol, err)
		return
	}
	log.Printf("Ativo %s sincronizado com o ledger (mint %s)", symbol, mint)
}

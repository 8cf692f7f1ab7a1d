package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strconv"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaIntegrationService concentra toda a comunicação com o ledger SPL.
// O FeePayer assina e paga as transações administrativas (criação de mint,
// emissão inicial); transferências de usuários são apenas preparadas aqui
// e assinadas fora.
type SolanaIntegrationService struct {
	RPCClient *rpc.Client
	FeePayer  solana.PrivateKey
}

// NewSolanaIntegrationService cria o serviço de integração Solana a partir
// da URL do RPC e da chave privada do pagador de taxas em Base58.
func NewSolanaIntegrationService(rpcURL, feePayerKeyBase58 string) (*SolanaIntegrationService, error) {
	feePayer, err := solana.PrivateKeyFromBase58(feePayerKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("chave privada do FeePayer inválida: %w", err)
	}
	return &SolanaIntegrationService{
		RPCClient: rpc.New(rpcURL),
		FeePayer:  feePayer,
	}, nil
}

// CreateMintAndTokenAccount cria um novo mint SPL com zero decimais (cada
// unidade é uma fração indivisível do ativo) e a ATA do dono para ele.
// Retorna o endereço do mint e o da ATA. A emissão das frações é feita em
// seguida por MintTokensToAccount.
func (s *SolanaIntegrationService) CreateMintAndTokenAccount(
	ownerPubKey solana.PublicKey, assetSymbol string,
) (solana.PublicKey, solana.PublicKey, error) {
	ctx := context.Background()

	mintAccount, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao gerar chave do mint: %w", err)
	}
	mintPubKey := mintAccount.PublicKey()

	rent, err := s.RPCClient.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, rpc.CommitmentFinalized)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao obter rent mínimo: %w", err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(ownerPubKey, mintPubKey)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao derivar ATA do dono: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent,
			token.MINT_SIZE,
			token.ProgramID,
			s.FeePayer.PublicKey(),
			mintPubKey,
		).Build(),
		token.NewInitializeMintInstruction(
			0,
			mintPubKey,
			s.FeePayer.PublicKey(),
			s.FeePayer.PublicKey(),
			solana.SysVarRentPubkey,
		).Build(),
		associatedtokenaccount.NewCreateInstruction(
			s.FeePayer.PublicKey(),
			ownerPubKey,
			mintPubKey,
		).Build(),
	}

	resp, err := s.RPCClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao obter blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		resp.Value.Blockhash,
		solana.TransactionPayer(s.FeePayer.PublicKey()),
	)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao criar transação de mint: %w", err)
	}

	// FeePayer paga a transação; a conta do mint assina a própria criação.
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.FeePayer.PublicKey()) {
			return &s.FeePayer
		}
		if key.Equals(mintPubKey) {
			return &mintAccount
		}
		return nil
	})
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao assinar transação de mint: %w", err)
	}

	txID, err := s.RPCClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("falha ao enviar transação de mint: %w", err)
	}
	log.Printf("Mint %s criado para o ativo %s (tx: %s)", mintPubKey, assetSymbol, txID)

	return mintPubKey, ata, nil
}

// MintTokensToAccount emite amount unidades adicionais do mint na conta de
// destino. O FeePayer precisa ser a autoridade de mint.
func (s *SolanaIntegrationService) MintTokensToAccount(
	mintAddress, destinationATA solana.PublicKey, amount uint64,
) (solana.Signature, error) {
	ctx := context.Background()

	resp, err := s.RPCClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao obter blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			token.NewMintToInstruction(
				amount,
				mintAddress,
				destinationATA,
				s.FeePayer.PublicKey(),
				nil,
			).Build(),
		},
		resp.Value.Blockhash,
		solana.TransactionPayer(s.FeePayer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao criar transação de emissão: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.FeePayer.PublicKey()) {
			return &s.FeePayer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao assinar transação de emissão: %w", err)
	}

	txID, err := s.RPCClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao enviar transação de emissão: %w", err)
	}
	log.Printf("Emitidas %d unidades do mint %s para %s (tx: %s)", amount, mintAddress, destinationATA, txID)

	return txID, nil
}

// PrepareTransferTransaction serializa uma transação de transferência para
// assinatura pelo usuário. Esta função CONSTRÓI a transação, mas NÃO a
// assina com a chave privada do remetente; o FeePayer paga as taxas de rede.
func (s *SolanaIntegrationService) PrepareTransferTransaction(
	mintAddress, fromATA, toATA solana.PublicKey,
	fromOwnerPubKey solana.PublicKey,
	amount uint64,
) (string, error) {
	resp, err := s.RPCClient.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("falha ao obter blockhash: %w", err)
	}

	transferInstruction := token.NewTransferInstruction(
		amount,
		fromATA,
		toATA,
		fromOwnerPubKey,
		nil,
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{transferInstruction},
		resp.Value.Blockhash,
		solana.TransactionPayer(s.FeePayer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("falha ao criar transação de transferência: %w", err)
	}

	// O FeePayer assina agora; o remetente assina no cliente.
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.FeePayer.PublicKey()) {
			return &s.FeePayer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("falha ao assinar transação pelo FeePayer: %w", err)
	}

	serializedTx, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("falha ao serializar transação: %w", err)
	}

	return base64.StdEncoding.EncodeToString(serializedTx), nil
}

// SendSignedTransaction recebe uma transação já assinada e a envia para a rede.
func (s *SolanaIntegrationService) SendSignedTransaction(signedTxBase64 string) (solana.Signature, error) {
	tx, err := solana.TransactionFromBase64(signedTxBase64)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao decodificar transação assinada: %w", err)
	}

	txID, err := s.RPCClient.SendTransactionWithOpts(context.Background(), tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao enviar transação assinada: %w", err)
	}
	log.Printf("Transação assinada enviada: %s", txID)

	return txID, nil
}

// GetTokenAccountBalance consulta o saldo de uma conta de token na rede.
func (s *SolanaIntegrationService) GetTokenAccountBalance(account solana.PublicKey) (uint64, error) {
	resp, err := s.RPCClient.GetTokenAccountBalance(context.Background(), account, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("falha ao consultar saldo da conta %s: %w", account, err)
	}
	balance, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("saldo inválido retornado pela rede: %w", err)
	}
	return balance, nil
}

// GetTokenSupply consulta o supply total de um mint na rede.
func (s *SolanaIntegrationService) GetTokenSupply(mintAddress solana.PublicKey) (uint64, error) {
	resp, err := s.RPCClient.GetTokenSupply(context.Background(), mintAddress, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("falha ao consultar supply do mint %s: %w", mintAddress, err)
	}
	supply, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("supply inválido retornado pela rede: %w", err)
	}
	return supply, nil
}

// Package apperrors define a taxonomia de erros compartilhada pelos três
// subsistemas (registro de ativos, governança e token de plataforma).
// Os erros são retornados ao chamador exatamente como estão; nenhuma
// camada intermediária tenta recuperação ou retry.
package apperrors

import "errors"

var (
	// ErrUnauthorized indica que o chamador não é a autoridade do registro.
	ErrUnauthorized = errors.New("unauthorized access to this resource or operation")

	// ErrInvalidParameters indica parâmetros inválidos (inclui quórum não atingido).
	ErrInvalidParameters = errors.New("invalid parameters provided")

	ErrMathOverflow  = errors.New("math overflow occurred")
	ErrMathUnderflow = errors.New("math underflow occurred")

	ErrAssetNotFound        = errors.New("asset not found")
	ErrAssetNotVerified     = errors.New("asset is not verified")
	ErrAssetAlreadyVerified = errors.New("asset is already verified")
	ErrAssetNotTradable     = errors.New("asset is not tradable")
	ErrAssetAlreadyTokenized = errors.New("asset is already tokenized")

	// ErrAssetBurned bloqueia operações sobre um ativo já queimado.
	ErrAssetBurned = errors.New("asset has been burned/deactivated")
	// ErrAssetAlreadyBurned indica uma segunda tentativa de queima.
	ErrAssetAlreadyBurned = errors.New("asset is already burned")

	ErrInsufficientFunds = errors.New("insufficient funds for operation")

	ErrInvalidVotingPeriod      = errors.New("invalid voting period")
	ErrProposalInactive         = errors.New("proposal is inactive")
	ErrVotingPeriodEnded        = errors.New("voting period has ended")
	ErrVotingPeriodNotEnded     = errors.New("voting period has not ended")
	ErrProposalAlreadyExecuted  = errors.New("proposal has already been executed")

	ErrInvalidTokenMint    = errors.New("invalid token mint")
	ErrInvalidTokenAccount = errors.New("invalid token account")

	ErrInvalidValuation          = errors.New("invalid asset valuation")
	ErrCannotMintAdditional      = errors.New("cannot mint additional tokens for this asset")
	ErrInvalidDistributionAmount = errors.New("invalid income distribution amount")
	ErrDistributionTooFrequent   = errors.New("income distribution is too frequent")
	ErrSharePriceTooLow          = errors.New("share price is too low")
	ErrTotalSharesExceedsMaximum = errors.New("total shares exceeds maximum allowed")
	ErrInvalidAssetCategory      = errors.New("invalid asset category")
	ErrAssetNameTooLong          = errors.New("asset name is too long")
	ErrAssetDescriptionTooLong   = errors.New("asset description is too long")
	ErrLiquidityPoolExists       = errors.New("liquidity pool already exists for this asset")
	ErrLiquidityPoolNotFound     = errors.New("liquidity pool not found for this asset")
)

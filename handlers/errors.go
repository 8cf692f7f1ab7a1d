package handlers

import (
	"errors"
	"net/http"

	"github.com/realstackxyz/realstack/apperrors"
	"github.com/realstackxyz/realstack/storage"
)

// writeServiceError traduz a taxonomia de erros dos serviços em status
// HTTP. Erros fora da taxonomia viram 500 sem vazar detalhes internos.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, apperrors.ErrAssetNotFound),
		errors.Is(err, storage.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperrors.ErrAssetAlreadyBurned),
		errors.Is(err, apperrors.ErrProposalAlreadyExecuted),
		errors.Is(err, storage.ErrDuplicateVote),
		errors.Is(err, storage.ErrAlreadyInitialized):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperrors.ErrInvalidParameters),
		errors.Is(err, apperrors.ErrMathOverflow),
		errors.Is(err, apperrors.ErrMathUnderflow),
		errors.Is(err, apperrors.ErrAssetBurned),
		errors.Is(err, apperrors.ErrAssetNotVerified),
		errors.Is(err, apperrors.ErrAssetNotTradable),
		errors.Is(err, apperrors.ErrInvalidVotingPeriod),
		errors.Is(err, apperrors.ErrProposalInactive),
		errors.Is(err, apperrors.ErrVotingPeriodEnded),
		errors.Is(err, apperrors.ErrVotingPeriodNotEnded),
		errors.Is(err, apperrors.ErrInvalidTokenMint),
		errors.Is(err, apperrors.ErrInvalidTokenAccount),
		errors.Is(err, apperrors.ErrInvalidValuation),
		errors.Is(err, apperrors.ErrCannotMintAdditional),
		errors.Is(err, apperrors.ErrInvalidDistributionAmount),
		errors.Is(err, apperrors.ErrDistributionTooFrequent),
		errors.Is(err, apperrors.ErrSharePriceTooLow),
		errors.Is(err, apperrors.ErrTotalSharesExceedsMaximum),
		errors.Is(err, apperrors.ErrInvalidAssetCategory),
		errors.Is(err, apperrors.ErrAssetNameTooLong),
		errors.Is(err, apperrors.ErrAssetDescriptionTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

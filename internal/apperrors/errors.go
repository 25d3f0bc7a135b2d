package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidAuthHeader  = errors.New("invalid or missing Authorization header")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrForbidden          = errors.New("forbidden")
	ErrUserInactive       = errors.New("user is inactive")
)

var ErrValidation = errors.New("validation error")

var (
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive with at most 8 decimals", ErrValidation)
	ErrSelfTransfer      = fmt.Errorf("%w: cannot transfer to yourself", ErrValidation)
	ErrRecipientInactive = fmt.Errorf("%w: recipient account is inactive", ErrValidation)
	ErrInvalidAddress    = fmt.Errorf("%w: invalid destination address", ErrValidation)
	ErrWithdrawalLimits  = fmt.Errorf("%w: amount outside withdrawal limits", ErrValidation)
	ErrInvalidTxHash     = fmt.Errorf("%w: invalid transaction hash", ErrValidation)
	ErrInvalidAsset      = fmt.Errorf("%w: unsupported asset", ErrValidation)
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrWithdrawalNotFound  = errors.New("withdrawal request not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

var ErrConcurrencyConflict = errors.New("concurrency conflict")

var (
	ErrAlreadyDecided      = fmt.Errorf("%w: withdrawal request already decided", ErrConcurrencyConflict)
	ErrSettlementChanged   = fmt.Errorf("%w: settlement state changed", ErrConcurrencyConflict)
	ErrInvalidStatusChange = fmt.Errorf("%w: transaction status cannot change", ErrConcurrencyConflict)
	ErrNothingToResolve    = fmt.Errorf("%w: settlement does not need resolution", ErrConcurrencyConflict)
	ErrTxHashAlreadyUsed   = fmt.Errorf("%w: transaction hash already settles another record", ErrConcurrencyConflict)
)

var (
	ErrSettlementUncertain = errors.New("settlement outcome unknown")
	ErrSettlementFailed    = errors.New("settlement rejected by network")
	ErrTxNotConfirmed      = errors.New("transaction not found or not successful on chain")
)

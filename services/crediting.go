package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"

	"eduwallet/blockchain"
	"eduwallet/models"
	"eduwallet/repository"
	"eduwallet/utils"
)

// CreditingEngine applies the EDU reward for a confirmed deposit_points
// transaction: an on-chain mint to the recipient address and an off-chain
// reward-statistics increment, each fault-isolated from the other.
type CreditingEngine struct {
	chain      blockchain.Client
	txRepo     *repository.TransactionRepo
	walletRepo *repository.WalletRepo
	userRepo   *repository.UserRepo
}

func NewCreditingEngine(chain blockchain.Client, txRepo *repository.TransactionRepo, walletRepo *repository.WalletRepo, userRepo *repository.UserRepo) *CreditingEngine {
	return &CreditingEngine{
		chain:      chain,
		txRepo:     txRepo,
		walletRepo: walletRepo,
		userRepo:   userRepo,
	}
}

// CreditDeposit credits a confirmed deposit exactly once. The CreditedAt
// marker is claimed with a conditional update before any side effect runs, so
// a transaction observed by overlapping or repeated reconciliation passes is
// credited at most once.
func (e *CreditingEngine) CreditDeposit(ctx context.Context, tx *models.BlockchainTransaction) error {
	eduAmount, ok := e.resolveEduAmount(tx)
	if !ok {
		log.Printf("[CREDITING] tx %s: no usable amount, skipping credit", tx.TxHash)
		return nil
	}

	claimed, err := e.txRepo.ClaimCredit(tx.ID)
	if err != nil {
		return fmt.Errorf("failed to claim credit for tx %s: %v", tx.TxHash, err)
	}
	if !claimed {
		log.Printf("[CREDITING] tx %s already credited, skipping", tx.TxHash)
		return nil
	}

	var mintErr, statsErr error

	// On-chain mint to the recipient address, when one is known. A mint
	// failure must not block the local statistics update.
	if tx.ToAddress != "" {
		if _, err := e.chain.Mint(ctx, tx.ToAddress, eduAmount); err != nil {
			mintErr = err
			log.Printf("[CREDITING] tx %s: mint of %.6f EDU to %s failed: %v", tx.TxHash, eduAmount, tx.ToAddress, err)
		}
	}

	// Off-chain reward statistics, atomic increment plus action log
	if tx.UserID != nil {
		if err := e.userRepo.IncrementRewardPoints(*tx.UserID, eduAmount); err != nil {
			statsErr = err
			log.Printf("[CREDITING] tx %s: reward increment for user %d failed: %v", tx.TxHash, *tx.UserID, err)
		} else if err := e.userRepo.LogAction(*tx.UserID, models.UserActionRewardCredited, map[string]interface{}{
			"txHash":    tx.TxHash,
			"eduAmount": eduAmount,
		}); err != nil {
			log.Printf("[CREDITING] tx %s: action log failed: %v", tx.TxHash, err)
		}
	}

	if mintErr != nil || statsErr != nil {
		utils.SendCreditingFailureAlert(tx.TxHash, fmt.Sprintf("mint: %v, stats: %v", mintErr, statsErr))
		return fmt.Errorf("crediting incomplete for tx %s (mint: %v, stats: %v)", tx.TxHash, mintErr, statsErr)
	}

	log.Printf("[CREDITING] tx %s: credited %.6f EDU", tx.TxHash, eduAmount)
	return nil
}

// resolveEduAmount resolves the credited amount: a precomputed eduAmount in
// the metadata wins; otherwise the PZO amount is converted with the latest
// admin wallet price. Anything non-positive or non-finite yields no credit.
func (e *CreditingEngine) resolveEduAmount(tx *models.BlockchainTransaction) (float64, bool) {
	if raw, exists := tx.Metadata["eduAmount"]; exists {
		if v, ok := toFloat(raw); ok && positiveFinite(v) {
			return v, true
		}
	}

	if tx.Amount == "" {
		return 0, false
	}
	pzo, err := strconv.ParseFloat(tx.Amount, 64)
	if err != nil || !positiveFinite(pzo) {
		return 0, false
	}

	price, err := e.walletRepo.LatestPrice()
	if err != nil {
		log.Printf("[CREDITING] tx %s: no conversion price available: %v", tx.TxHash, err)
		return 0, false
	}
	if !positiveFinite(price) {
		return 0, false
	}

	edu := pzo / price
	if !positiveFinite(edu) {
		return 0, false
	}
	return edu, true
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

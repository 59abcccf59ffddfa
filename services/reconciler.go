package services

import (
	"context"
	"fmt"
	"log"

	"eduwallet/blockchain"
	"eduwallet/models"
	"eduwallet/repository"
	"eduwallet/utils"
)

// TransactionReconciler aligns locally-recorded transaction state with the
// chain. It scans records without a confirmed chain state, queries the node
// for receipts, applies the pending -> success/failed transition and hands
// newly-confirmed deposits to the crediting engine.
type TransactionReconciler struct {
	chain     blockchain.Client
	txRepo    *repository.TransactionRepo
	crediting *CreditingEngine
}

func NewTransactionReconciler(chain blockchain.Client, txRepo *repository.TransactionRepo, crediting *CreditingEngine) *TransactionReconciler {
	return &TransactionReconciler{
		chain:     chain,
		txRepo:    txRepo,
		crediting: crediting,
	}
}

// ReconcilePending processes up to limit unconfirmed transactions and returns
// how many records were actually updated. One unreachable or malformed
// transaction never blocks the rest of the batch.
func (r *TransactionReconciler) ReconcilePending(ctx context.Context, limit int) (int, error) {
	txs, err := r.txRepo.FindPending(limit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending transactions: %v", err)
	}
	if len(txs) == 0 {
		return 0, nil
	}
	log.Printf("[RECONCILER] checking %d unconfirmed transactions", len(txs))

	updated := 0
	_, failures := utils.ForEachIsolated("RECONCILER", txs, func(tx models.BlockchainTransaction) error {
		didUpdate, err := r.reconcileOne(ctx, &tx)
		if didUpdate {
			updated++
		}
		return err
	})

	if len(failures) > 0 {
		log.Printf("[RECONCILER] %d of %d transactions failed this pass, will retry on next run", len(failures), len(txs))
	}
	return updated, nil
}

// reconcileOne queries the chain for one transaction and applies the outcome.
// Reports whether the record was updated.
func (r *TransactionReconciler) reconcileOne(ctx context.Context, tx *models.BlockchainTransaction) (bool, error) {
	receipt, err := r.chain.GetTransactionReceipt(ctx, tx.TxHash)
	if err != nil {
		return false, err
	}
	if receipt == nil {
		// Not mined yet; stays pending, eligible for the next pass
		return false, nil
	}

	status := deriveStatus(receipt)
	if status == models.ChainTxStatusPending {
		return false, nil
	}

	transitioned, err := r.txRepo.MarkConfirmed(tx.ID, status, receipt.BlockNumber)
	if err != nil {
		return false, fmt.Errorf("failed to persist status for tx %s: %v", tx.TxHash, err)
	}
	if !transitioned {
		// Another pass already moved this record out of pending
		return false, nil
	}
	log.Printf("[RECONCILER] tx %s confirmed in block %d with status %s", tx.TxHash, receipt.BlockNumber, status)

	// Crediting runs only from the pass that performed the transition. Its
	// failure is logged but never rolls back the committed status update and
	// never fails the item.
	if status == models.ChainTxStatusSuccess && tx.TxType == models.ChainTxTypeDepositPoints {
		if err := r.crediting.CreditDeposit(ctx, tx); err != nil {
			log.Printf("[RECONCILER] crediting for tx %s failed: %v", tx.TxHash, err)
		}
	}
	return true, nil
}

// deriveStatus maps a receipt onto the local status: an explicit execution
// outcome wins; otherwise any confirmation counts as success and an
// unconfirmed receipt leaves the record pending.
func deriveStatus(receipt *blockchain.Receipt) models.ChainTxStatus {
	if receipt.Status != nil {
		if *receipt.Status {
			return models.ChainTxStatusSuccess
		}
		return models.ChainTxStatusFailed
	}
	if receipt.Confirmations > 0 {
		return models.ChainTxStatusSuccess
	}
	return models.ChainTxStatusPending
}

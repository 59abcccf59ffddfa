package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChainTxType defines the kind of on-chain operation a record tracks
type ChainTxType string

const (
	ChainTxTypeDepositPoints ChainTxType = "deposit_points"
	ChainTxTypeMint          ChainTxType = "mint"
	ChainTxTypeTransferEdu   ChainTxType = "transferEduTokens"
	ChainTxTypePurchaseItem  ChainTxType = "purchaseItem"
)

// ChainTxStatus defines the reconciliation state of a transaction record
type ChainTxStatus string

const (
	ChainTxStatusPending ChainTxStatus = "pending"
	ChainTxStatusSuccess ChainTxStatus = "success"
	ChainTxStatusFailed  ChainTxStatus = "failed"
)

// BlockchainTransaction is a durable record of an intended or observed on-chain operation.
// Status only ever moves pending -> success or pending -> failed; once non-pending the
// record is immutable with respect to status. CreditedAt marks that the crediting side
// effects for a confirmed deposit have already been applied.
type BlockchainTransaction struct {
	gorm.Model
	TxType  ChainTxType   `gorm:"type:varchar(50);not null;index" json:"txType"`
	Status  ChainTxStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	TxHash  string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"txHash"`
	Amount  string        `gorm:"type:varchar(80)" json:"amount"` // PZO amount as reported, decimal string
	TokenID string        `gorm:"type:varchar(100)" json:"tokenId"`

	ToAddress   string `gorm:"type:varchar(64)" json:"toAddress"`
	FromAddress string `gorm:"type:varchar(64)" json:"fromAddress"`
	UserID      *uint  `gorm:"index" json:"userId"` // Owning local user, if any

	BlockNumber *uint64    `json:"blockNumber"` // Nil until confirmed on chain
	CreditedAt  *time.Time `json:"creditedAt"`  // Nil until crediting side effects applied

	Metadata datatypes.JSONMap `json:"metadata"` // May carry a precomputed eduAmount

	IsDeleted bool `gorm:"default:false"`
	User      User `gorm:"foreignKey:UserID" json:"-"`
}

func (BlockchainTransaction) TableName() string {
	return "blockchain_transactions"
}

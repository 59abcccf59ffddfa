package services

import (
	"context"
	"fmt"
	"testing"

	"eduwallet/blockchain"
	"eduwallet/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database with all migrations applied
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.Course{},
		&models.Enrollment{},
		&models.BlockchainTransaction{},
		&models.AdminWallet{},
		&models.UserAction{},
	))
	return db
}

type mintCall struct {
	ToAddress string
	Amount    float64
}

// fakeChain is a scriptable blockchain.Client for tests
type fakeChain struct {
	receipts    map[string]*blockchain.Receipt
	receiptErrs map[string]error
	mintErr     error
	mintCalls   []mintCall
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		receipts:    make(map[string]*blockchain.Receipt),
		receiptErrs: make(map[string]error),
	}
}

func (f *fakeChain) GetTransactionReceipt(ctx context.Context, txHash string) (*blockchain.Receipt, error) {
	if err, ok := f.receiptErrs[txHash]; ok {
		return nil, err
	}
	return f.receipts[txHash], nil
}

func (f *fakeChain) Mint(ctx context.Context, toAddress string, amount float64) (*blockchain.MintResult, error) {
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	f.mintCalls = append(f.mintCalls, mintCall{ToAddress: toAddress, Amount: amount})
	return &blockchain.MintResult{TransactionHash: "0xminted", BlockNumber: 99}, nil
}

func (f *fakeChain) DepositPoints(ctx context.Context, toAddress string, amount float64) (string, error) {
	return "0xdeposit", nil
}

func (f *fakeChain) GetBalance(ctx context.Context, address string) (float64, error) {
	return 0, nil
}

func boolPtr(v bool) *bool { return &v }
func uintPtr(v uint) *uint { return &v }

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "x", WalletAddress: "0x" + email}
	require.NoError(t, db.Create(user).Error)
	return user
}

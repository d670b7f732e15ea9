package service

import (
	"context"
	"testing"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"
	"remit-ledger/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type swapTestDeps struct {
	svc         *SwapServiceImpl
	accountRepo *mocks.MockAccountRepository
	balanceRepo *mocks.MockBalanceRepository
	ledgerRepo  *mocks.MockLedgerRepository
	swapRepo    *mocks.MockSwapRepository
	rateGateway *mocks.MockRateGateway
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupSwapService(t *testing.T) *swapTestDeps {
	ctrl := gomock.NewController(t)
	d := &swapTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		balanceRepo: mocks.NewMockBalanceRepository(ctrl),
		ledgerRepo:  mocks.NewMockLedgerRepository(ctrl),
		swapRepo:    mocks.NewMockSwapRepository(ctrl),
		rateGateway: mocks.NewMockRateGateway(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewSwapService(
		d.accountRepo, d.balanceRepo, d.ledgerRepo, d.swapRepo,
		d.rateGateway, d.transactor, decimal.RequireFromString("0.005"), zerolog.Nop(),
	)
	return d
}

func TestSwapService_Swap_Success(t *testing.T) {
	d := setupSwapService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("alice@example.com")
	tx := &mockTx{}

	// 100 USD at 0.92 with 0.5% spread: rate 0.9154, output 91.54 EUR.
	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.rateGateway.EXPECT().GetRate(ctx, "USD", "EUR").Return(decimal.RequireFromString("0.92"), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.balanceRepo.EXPECT().
		DebitIfSufficient(ctx, tx, account.ID, "USD", decimalEq(decimal.NewFromInt(100))).
		Return(true, nil)
	d.balanceRepo.EXPECT().
		Credit(ctx, tx, account.ID, "EUR", decimalEq(decimal.RequireFromString("91.54"))).
		Return(nil)
	d.swapRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil).Times(2)

	result, err := d.svc.Swap(ctx, ports.SwapRequest{
		AccountID: account.ID,
		FromAsset: "USD",
		ToAsset:   "EUR",
		Amount:    decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.ToAmount.Equal(decimal.RequireFromString("91.54")))
	assert.True(t, result.RateBase.Equal(decimal.RequireFromString("0.92")))
	assert.True(t, result.RateApplied.Equal(decimal.RequireFromString("0.9154")))
}

func TestSwapService_Swap_SamePair(t *testing.T) {
	d := setupSwapService(t)
	defer d.ctrl.Finish()

	result, err := d.svc.Swap(context.Background(), ports.SwapRequest{
		AccountID: activeAccount("a@example.com").ID,
		FromAsset: "USD",
		ToAsset:   "USD",
		Amount:    decimal.NewFromInt(10),
	})
	assert.Nil(t, result)
	assertAppError(t, err, "LGR_004")
}

func TestSwapService_Swap_UnsupportedAsset(t *testing.T) {
	d := setupSwapService(t)
	defer d.ctrl.Finish()

	result, err := d.svc.Swap(context.Background(), ports.SwapRequest{
		AccountID: activeAccount("a@example.com").ID,
		FromAsset: "USD",
		ToAsset:   "DOGE",
		Amount:    decimal.NewFromInt(10),
	})
	assert.Nil(t, result)
	assertAppError(t, err, "LGR_004")
}

func TestSwapService_Swap_RateUnavailable(t *testing.T) {
	d := setupSwapService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("alice@example.com")

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.rateGateway.EXPECT().GetRate(ctx, "GBP", "BTC").Return(decimal.Zero, ports.ErrUnknownPair)

	result, err := d.svc.Swap(ctx, ports.SwapRequest{
		AccountID: account.ID,
		FromAsset: "GBP",
		ToAsset:   "BTC",
		Amount:    decimal.NewFromInt(10),
	})
	assert.Nil(t, result)
	assertAppError(t, err, "LGR_008")
}

func TestSwapService_Swap_InsufficientFunds(t *testing.T) {
	d := setupSwapService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("alice@example.com")
	tx := &mockTx{}

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)
	d.rateGateway.EXPECT().GetRate(ctx, "USD", "EUR").Return(decimal.RequireFromString("0.92"), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.balanceRepo.EXPECT().
		DebitIfSufficient(ctx, tx, account.ID, "USD", gomock.Any()).
		Return(false, nil)

	result, err := d.svc.Swap(ctx, ports.SwapRequest{
		AccountID: account.ID,
		FromAsset: "USD",
		ToAsset:   "EUR",
		Amount:    decimal.NewFromInt(500),
	})
	assert.Nil(t, result)
	assertAppError(t, err, "LGR_001")
}

func TestSwapService_Swap_FrozenAccount(t *testing.T) {
	d := setupSwapService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("frozen@example.com")
	account.Status = domain.AccountStatusFrozen

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)

	result, err := d.svc.Swap(ctx, ports.SwapRequest{
		AccountID: account.ID,
		FromAsset: "USD",
		ToAsset:   "EUR",
		Amount:    decimal.NewFromInt(10),
	})
	assert.Nil(t, result)
	assertAppError(t, err, "LGR_007")
}

func TestApplySpread_Rounding(t *testing.T) {
	// 0.00000001 BTC at 65000 USD with 0.5% spread is 0.00064675 USD,
	// which survives rounding at 8 decimal places.
	rate, out := domain.ApplySpread(
		decimal.RequireFromString("0.00000001"),
		decimal.NewFromInt(65000),
		decimal.RequireFromString("0.005"),
	)
	assert.True(t, rate.Equal(decimal.RequireFromString("64675")))
	assert.True(t, out.Equal(decimal.RequireFromString("0.00064675")))
}

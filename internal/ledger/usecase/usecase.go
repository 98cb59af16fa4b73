package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/cashierpro-core/internal/inventory"
	"github.com/fekuna/cashierpro-core/internal/ledger"
	"github.com/fekuna/cashierpro-core/internal/ledger/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type ledgerUseCase struct {
	repo   ledger.Repository
	items  inventory.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerUseCase(repo ledger.Repository, items inventory.Repository, log *zap.Logger) ledger.UseCase {
	return &ledgerUseCase{
		repo:   repo,
		items:  items,
		logger: log,
		now:    time.Now,
	}
}

func (uc *ledgerUseCase) FinalizeSale(ctx context.Context, input *dto.SaleInput) (*model.SaleSnapshot, error) {
	if len(input.Lines) == 0 {
		return nil, &model.ValidationError{Field: "lines", Reason: "required"}
	}

	// Duplicate SKUs collapse into one line.
	merged := make([]dto.SaleLineInput, 0, len(input.Lines))
	bySKU := map[string]int{}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		if idx, ok := bySKU[line.SKU]; ok {
			merged[idx].Quantity += line.Quantity
			continue
		}
		bySKU[line.SKU] = len(merged)
		merged = append(merged, line)
	}

	// 1. All-or-nothing check before any write: resolve every item, verify
	// stock, and total the sale.
	saleItems := make([]model.SaleLine, 0, len(merged))
	prepared := make([]dto.PreparedSaleLine, 0, len(merged))
	var totalPrice int64
	for _, line := range merged {
		item, err := uc.items.FindBySKU(ctx, line.SKU)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("sku %q: %w", line.SKU, model.ErrNotFound)
		}
		if !input.AllowNegative && line.Quantity > item.Quantity {
			return nil, &model.InsufficientStockError{
				SKU:       line.SKU,
				Requested: line.Quantity,
				Available: item.Quantity,
			}
		}
		totalPrice += item.UnitPrice * line.Quantity
		saleItems = append(saleItems, model.SaleLine{
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPrice:      item.UnitPrice,
			QuantityOnHand: item.Quantity,
			QuantitySold:   line.Quantity,
		})
		prepared = append(prepared, dto.PreparedSaleLine{
			SKU:          item.SKU,
			ItemName:     item.Name,
			QuantitySold: line.Quantity,
		})
	}

	if input.CashReceived < totalPrice {
		return nil, &model.InsufficientPaymentError{
			TotalPrice:   totalPrice,
			CashReceived: input.CashReceived,
		}
	}

	// 2. Freeze the snapshot. Every row of this sale carries the same
	// timestamp and transaction id.
	snapshot := &model.SaleSnapshot{
		TransactionID: uuid.New().String(),
		Date:          uc.now().UTC(),
		Items:         saleItems,
		TotalPrice:    totalPrice,
		CashReceived:  input.CashReceived,
		Change:        input.CashReceived - totalPrice,
	}

	id, err := uc.repo.FinalizeSale(ctx, prepared, snapshot, input.AllowNegative)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("sale finalized",
		zap.Int64("transaction_log_id", id),
		zap.String("transaction_id", snapshot.TransactionID),
		zap.Int("line_count", len(saleItems)),
		zap.Int64("total_price", totalPrice),
	)

	return snapshot, nil
}

func (uc *ledgerUseCase) CombinedHistory(ctx context.Context, order dto.SortOrder) ([]model.CombinedLogEntry, error) {
	mutations, err := uc.repo.ListMutations(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := uc.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	combined := make([]model.CombinedLogEntry, 0, len(mutations)+len(transactions))
	for i := range mutations {
		m := mutations[i]
		combined = append(combined, model.CombinedLogEntry{
			Kind:      model.KindMutation,
			Timestamp: m.Timestamp,
			Mutation:  &m,
		})
	}
	for i := range transactions {
		t := transactions[i]
		combined = append(combined, model.CombinedLogEntry{
			Kind:        model.KindTransaction,
			Timestamp:   t.Timestamp,
			Transaction: &t,
		})
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if order == dto.SortAsc {
			return combined[i].Timestamp.Before(combined[j].Timestamp)
		}
		return combined[i].Timestamp.After(combined[j].Timestamp)
	})

	return combined, nil
}

func (uc *ledgerUseCase) GroupedHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	mutations, err := uc.repo.ListMutations(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := uc.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	// First pass: the set of transaction timestamps, truncated to the
	// second. Only needed for legacy rows without a transaction id link.
	txSeconds := make(map[int64]struct{}, len(transactions))
	for _, t := range transactions {
		txSeconds[t.Timestamp.UTC().Truncate(time.Second).Unix()] = struct{}{}
	}

	// Second pass: bucket mutations by second. Outgoing rows already
	// represented by a transaction are suppressed; incoming stock is never
	// sale-driven and always stays visible.
	groups := []*model.MutationGroup{}
	bySecond := map[int64]*model.MutationGroup{}
	for _, m := range mutations {
		if m.Delta < 0 {
			if m.TransactionID != nil {
				continue
			}
			if _, ok := txSeconds[m.Timestamp.UTC().Truncate(time.Second).Unix()]; ok {
				continue
			}
		}
		sec := m.Timestamp.UTC().Truncate(time.Second)
		g, ok := bySecond[sec.Unix()]
		if !ok {
			g = &model.MutationGroup{Timestamp: sec}
			bySecond[sec.Unix()] = g
			groups = append(groups, g)
		}
		g.Entries = append(g.Entries, m)
	}

	entries := make([]model.HistoryEntry, 0, len(groups)+len(transactions))
	for _, g := range groups {
		entries = append(entries, model.HistoryEntry{
			Kind:      model.KindMutation,
			Timestamp: g.Timestamp,
			Group:     g,
		})
	}
	for i := range transactions {
		t := transactions[i]
		entries = append(entries, model.HistoryEntry{
			Kind:        model.KindTransaction,
			Timestamp:   t.Timestamp,
			Transaction: &t,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

func (uc *ledgerUseCase) TransactionByID(ctx context.Context, id int64) (*model.SaleSnapshot, error) {
	return uc.repo.GetTransactionByID(ctx, id)
}

func (uc *ledgerUseCase) PeriodicIncome(ctx context.Context, period dto.Period) (int64, error) {
	start, err := uc.periodStart(period)
	if err != nil {
		return 0, err
	}
	return uc.repo.SumIncomeSince(ctx, start)
}

func (uc *ledgerUseCase) PeriodicExpenditure(ctx context.Context, period dto.Period) (int64, error) {
	start, err := uc.periodStart(period)
	if err != nil {
		return 0, err
	}
	return uc.repo.SumExpenditureSince(ctx, start)
}

// periodStart resolves the inclusive lower bound of the current period in
// local time: the most recent Sunday 00:00 for weekly, day 1 00:00 for
// monthly.
func (uc *ledgerUseCase) periodStart(period dto.Period) (time.Time, error) {
	// Boundaries are local wall-clock instants; stored timestamps are UTC, so
	// convert before handing the bound to the repository.
	now := uc.now()
	switch period {
	case dto.PeriodWeekly:
		return time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, now.Location()).UTC(), nil
	case dto.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).UTC(), nil
	default:
		return time.Time{}, &model.ValidationError{Field: "period", Reason: "must be weekly or monthly"}
	}
}

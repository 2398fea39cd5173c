package http

import (
	"github.com/jhoicas/interbranch-api/internal/application/dto"
	"github.com/jhoicas/interbranch-api/internal/application/inventory"
	"github.com/jhoicas/interbranch-api/internal/application/production"
	"github.com/jhoicas/interbranch-api/internal/application/settlement"
	"github.com/jhoicas/interbranch-api/internal/domain/entity"
)

func toTransferItemsInput(items []dto.TransferItemRequest) []inventory.TransferItemInput {
	out := make([]inventory.TransferItemInput, len(items))
	for i, it := range items {
		out[i] = inventory.TransferItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return out
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	items := make([]dto.TransferItemResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = dto.TransferItemResponse{
			ID: it.ID, LineNo: it.LineNo, ProductID: it.ProductID,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, Subtotal: it.Subtotal(),
		}
	}
	return dto.TransferResponse{
		ID:            t.ID,
		Number:        t.Number,
		FromBranchID:  t.FromBranchID,
		ToBranchID:    t.ToBranchID,
		Type:          string(t.Type),
		Status:        string(t.Status),
		Priority:      t.Priority,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		Notes:         t.Notes,
		TotalAmount:   t.TotalAmount(),
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ApprovedBy:    t.ApprovedBy,
		ApprovedAt:    t.ApprovedAt,
		ShippedAt:     t.ShippedAt,
		ReceivedAt:    t.ReceivedAt,
		CancelledAt:   t.CancelledAt,
		Items:         items,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID: m.ID, ProductID: m.ProductID, BranchID: m.BranchID, Direction: m.Direction,
		Quantity: m.Quantity, ReferenceType: m.ReferenceType, ReferenceID: m.ReferenceID,
		ItemID: m.ItemID, CreatedAt: m.CreatedAt, CreatedBy: m.CreatedBy,
	}
}

func toMovementsResponse(ms []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, len(ms))
	for i, m := range ms {
		out[i] = toMovementResponse(m)
	}
	return out
}

func toJournalEntryResponse(e *entity.JournalEntry) *dto.JournalEntryResponse {
	if e == nil {
		return nil
	}
	lines := make([]dto.JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = dto.JournalLineResponse{
			LineNo: l.LineNo, AccountCode: l.AccountCode, Description: l.Description, Debit: l.Debit, Credit: l.Credit,
		}
	}
	return &dto.JournalEntryResponse{
		ID: e.ID, BranchID: e.BranchID, EntryDate: e.EntryDate, EntryType: string(e.EntryType),
		ReferenceType: e.ReferenceType, ReferenceID: e.ReferenceID, Description: e.Description,
		Status: string(e.Status), TotalDebit: e.TotalDebit, TotalCredit: e.TotalCredit,
		ReversalOf: e.ReversalOf, CreatedBy: e.CreatedBy, CreatedAt: e.CreatedAt, Lines: lines,
	}
}

func toBalanceResponse(b *entity.InterBranchBalance) *dto.BalanceResponse {
	if b == nil {
		return nil
	}
	return &dto.BalanceResponse{
		ID: b.ID, FromBranchID: b.FromBranchID, ToBranchID: b.ToBranchID, ReferenceType: b.ReferenceType,
		ReferenceID: b.ReferenceID, Amount: b.Amount, Status: b.Status,
		CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt, SettledAt: b.SettledAt,
	}
}

func toBalancesResponse(bs []*entity.InterBranchBalance) []dto.BalanceResponse {
	out := make([]dto.BalanceResponse, len(bs))
	for i, b := range bs {
		out[i] = *toBalanceResponse(b)
	}
	return out
}

func toAllocationResponse(a *entity.PayrollAllocation) dto.PayrollAllocationResponse {
	return dto.PayrollAllocationResponse{
		ID: a.ID, EmployeeID: a.EmployeeID, HomeBranchID: a.HomeBranchID, VisitedBranchID: a.VisitedBranchID,
		Period: a.Period, AllocatedAmount: a.AllocatedAmount, SplitPercentage: a.SplitPercentage,
		CompanyPortion: a.CompanyPortion, BranchPortion: a.BranchPortion, Status: string(a.Status),
		JournalEntryID: a.JournalEntryID, Notes: a.Notes, CreatedBy: a.CreatedBy, ApprovedBy: a.ApprovedBy,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, ProcessedAt: a.ProcessedAt,
	}
}

func toPayrollSettlementResponse(p *settlement.PayrollSettlement) dto.PayrollSettlementResponse {
	return dto.PayrollSettlementResponse{
		Allocation: toAllocationResponse(p.Allocation),
		Entry:      toJournalEntryResponse(p.Entry),
		Balance:    toBalanceResponse(p.Balance),
	}
}

func toSettlementResponse(s *settlement.TransferSettlement) dto.TransferSettlementResponse {
	return dto.TransferSettlementResponse{
		Transfer:         toTransferResponse(s.Transfer),
		Movements:        toMovementsResponse(s.Movements),
		SourceEntry:      toJournalEntryResponse(s.SourceEntry),
		DestinationEntry: toJournalEntryResponse(s.DestinationEntry),
		Balance:          toBalanceResponse(s.Balance),
		Total:            s.Total,
	}
}

func toDistributeResponse(runID string, results []production.DestinationResult) dto.DistributeResponse {
	out := dto.DistributeResponse{
		ProductionRunID: runID,
		Results:         make([]dto.DestinationResultResponse, len(results)),
	}
	for i, r := range results {
		res := dto.DestinationResultResponse{
			BranchID:          r.BranchID,
			Attempts:          r.Attempts,
			Resumed:           r.Resumed,
			PendingTransferID: r.PendingTransferID,
			Status:            "settled",
		}
		if r.Transfer != nil {
			tr := toTransferResponse(r.Transfer)
			res.Transfer = &tr
		}
		if r.Err != nil {
			_, code := errorStatus(r.Err)
			res.Status = "failed"
			res.ErrorCode = code
			res.Error = r.Err.Error()
			if code == "INTERNAL" {
				res.Error = "error interno"
			}
			out.Failed++
		} else {
			out.Settled++
		}
		out.Results[i] = res
	}
	out.TotalQuantity = production.TotalQuantity(results)
	return out
}

func toStockLevelResponse(s *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{ProductID: s.ProductID, BranchID: s.BranchID, Quantity: s.Quantity, UpdatedAt: s.UpdatedAt}
}

func toBranchResponse(b *entity.Branch) dto.BranchResponse {
	return dto.BranchResponse{ID: b.ID, Code: b.Code, Name: b.Name, Address: b.Address, Active: b.Active}
}

package posting

import (
	"fmt"
	"strings"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func fieldReportMemo(p domain.FieldReportCompletion) string {
	parts := []string{"Field report"}
	if p.SiteName != "" {
		parts = append(parts, p.SiteName)
	}
	if p.ClientName != "" {
		parts = append(parts, p.ClientName)
	}
	return strings.Join(parts, " - ")
}

// buildFieldReport posts job income split by how it was received, and job costs split by
// whether they were paid on site.
func buildFieldReport(b *lineBuilder, p domain.FieldReportCompletion) {
	b.requireMoney("field report amounts",
		p.ContractSum, p.RigFeeCharged, p.MaterialsIncome,
		p.CashReceived, p.MobileMoneyReceived, p.BankDeposited,
		p.TotalWages, p.MaterialsCost, p.OperatingExpenses, p.CostsPaid)

	income := p.ContractSum.Add(p.RigFeeCharged).Add(p.MaterialsIncome)
	received := p.CashReceived.Add(p.MobileMoneyReceived).Add(p.BankDeposited)
	if received.GreaterThan(income) {
		b.fail(fmt.Sprintf("receipts %s exceed income %s", received.StringFixed(2), income.StringFixed(2)))
	}

	b.debit(RoleCash, p.CashReceived, "Cash received")
	b.debit(RoleMobileMoney, p.MobileMoneyReceived, "Mobile money received")
	b.debit(RoleBank, p.BankDeposited, "Bank deposit")
	b.debit(RoleAccountsReceivable, income.Sub(received), "Outstanding from client")
	b.credit(RoleContractRevenue, p.ContractSum, "Contract sum")
	b.credit(RoleRigFeeRevenue, p.RigFeeCharged, "Rig fee charged")
	b.credit(RoleMaterialsRevenue, p.MaterialsIncome, "Materials income")

	costs := p.TotalWages.Add(p.MaterialsCost).Add(p.OperatingExpenses)
	if p.CostsPaid.GreaterThan(costs) {
		b.fail(fmt.Sprintf("costs paid %s exceed costs %s", p.CostsPaid.StringFixed(2), costs.StringFixed(2)))
	}

	b.debit(RoleWagesExpense, p.TotalWages, "Wages")
	b.debit(RoleMaterialsExpense, p.MaterialsCost, "Materials used")
	b.debit(RoleOperatingExpense, p.OperatingExpenses, "Daily expenses")
	b.credit(RoleCash, p.CostsPaid, "Costs paid on site")
	b.credit(RoleAccountsPayable, costs.Sub(p.CostsPaid), "Costs outstanding")
}

func buildMaterialsPurchase(b *lineBuilder, p domain.MaterialsPurchase) {
	b.requirePositive("quantity", p.Quantity)
	b.requireNonNegative("unit cost", p.UnitCost)
	b.requireMoney("paid amount", p.PaidAmount)

	cost := domain.RoundMoney(p.Quantity.Mul(p.UnitCost))
	if p.PaidAmount.GreaterThan(cost) {
		b.fail(fmt.Sprintf("paid amount %s exceeds cost %s", p.PaidAmount.StringFixed(2), cost.StringFixed(2)))
	}

	memo := p.Description
	if p.Supplier != "" {
		memo = strings.TrimSpace(memo + " from " + p.Supplier)
	}
	b.debit(RoleInventory, cost, memo)
	b.credit(RoleCash, p.PaidAmount, "Paid on receipt")
	b.credit(RoleAccountsPayable, cost.Sub(p.PaidAmount), "Owed to supplier")
}

// buildPosSale credits gross revenue and debits discounts separately so both stay visible.
func buildPosSale(b *lineBuilder, p domain.PosSale) {
	if len(p.Items) == 0 {
		b.fail("sale has no items")
		return
	}
	b.requireMoney("sale totals", p.Subtotal, p.DiscountTotal, p.TaxTotal, p.Total)

	itemsTotal, costBasis := decimal.Zero, decimal.Zero
	for _, it := range p.Items {
		b.requireMoney("item "+it.ItemID, it.LineTotal, it.CostAmount)
		itemsTotal = itemsTotal.Add(it.LineTotal)
		costBasis = costBasis.Add(it.CostAmount)
	}
	if !itemsTotal.Equal(p.Subtotal) {
		b.fail(fmt.Sprintf("item totals %s do not match subtotal %s", itemsTotal.StringFixed(2), p.Subtotal.StringFixed(2)))
	}
	if p.DiscountTotal.GreaterThan(p.Subtotal) {
		b.fail("discount exceeds subtotal")
	}
	if expected := p.Subtotal.Sub(p.DiscountTotal).Add(p.TaxTotal); !expected.Equal(p.Total) {
		b.fail(fmt.Sprintf("total %s does not equal subtotal - discount + tax (%s)", p.Total.StringFixed(2), expected.StringFixed(2)))
	}

	tenders := newTenderTotals()
	fees := newTenderTotals()
	paid := decimal.Zero
	for _, pay := range p.Payments {
		b.requireMoney("payment "+pay.Method, pay.Amount)
		role := b.mapping.TenderRole(pay.Method)
		tenders.add(role, pay.Amount)
		fees.add(role, domain.RoundMoney(pay.Amount.Mul(b.mapping.FeeRate(pay.Method))))
		paid = paid.Add(pay.Amount)
	}
	if paid.GreaterThan(p.Total) {
		b.fail(fmt.Sprintf("payments %s exceed total %s", paid.StringFixed(2), p.Total.StringFixed(2)))
	}

	for _, role := range tenders.order {
		b.debit(role, tenders.amounts[role], fmt.Sprintf("Payment received (%s)", role))
	}
	b.debit(RoleAccountsReceivable, p.Total.Sub(paid), "Unpaid balance")
	b.debit(RoleDiscountExpense, p.DiscountTotal, "Discount given")
	b.debit(RoleCOGS, costBasis, "Cost of goods sold")
	b.debit(RoleProcessingFees, fees.total(), "Payment processing fees")

	b.credit(b.mapping.RevenueRole(p.StoreCode), p.Subtotal, "Sales "+firstNonEmpty(p.StoreName, p.StoreCode))
	b.credit(RoleTaxPayable, p.TaxTotal, "Sales tax collected")
	b.credit(RoleInventory, costBasis, "Inventory sold")
	for _, role := range fees.order {
		b.credit(role, fees.amounts[role], "Processing fee withheld")
	}
}

// buildPosRefund mirrors the sale rule for the refunded lines only.
// Bounds against the original sale are checked by the poster, which can see the ledger.
func buildPosRefund(b *lineBuilder, p domain.PosRefund) {
	if len(p.Items) == 0 {
		b.fail("refund has no items")
		return
	}
	if p.OriginalSaleID == "" {
		b.fail("original sale id is required")
	}
	switch normalizeMethod(p.RefundMethod) {
	case "":
		b.fail("refund method is required")
	case OriginalMethod:
		b.fail("refund method original_method must be resolved against the sale before posting")
	}

	gross, discount, tax, restocked := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range p.Items {
		b.requireMoney("refund item "+it.SaleItemID, it.Amount, it.DiscountAmount, it.TaxAmount, it.CostAmount)
		if it.DiscountAmount.GreaterThan(it.Amount) {
			b.fail("refund item " + it.SaleItemID + " discount exceeds amount")
		}
		gross = gross.Add(it.Amount)
		discount = discount.Add(it.DiscountAmount)
		tax = tax.Add(it.TaxAmount)
		if it.Restock {
			restocked = restocked.Add(it.CostAmount)
		}
	}

	memo := "Refund of sale " + p.OriginalSaleID
	b.debit(b.mapping.RevenueRole(p.StoreCode), gross, memo)
	b.debit(RoleTaxPayable, tax, "Sales tax refunded")
	b.debit(RoleInventory, restocked, "Inventory restocked")
	b.credit(b.mapping.TenderRole(p.RefundMethod), p.Total(), "Refund paid ("+p.RefundMethod+")")
	b.credit(RoleDiscountExpense, discount, "Discount reversed")
	b.credit(RoleCOGS, restocked, "Cost of goods returned")
}

// tenderTotals sums amounts per role, remembering first-seen order so output is deterministic.
type tenderTotals struct {
	order   []Role
	amounts map[Role]decimal.Decimal
}

func newTenderTotals() *tenderTotals {
	return &tenderTotals{amounts: make(map[Role]decimal.Decimal)}
}

func (t *tenderTotals) add(role Role, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	if _, ok := t.amounts[role]; !ok {
		t.order = append(t.order, role)
		t.amounts[role] = decimal.Zero
	}
	t.amounts[role] = t.amounts[role].Add(amount)
}

func (t *tenderTotals) total() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range t.amounts {
		sum = sum.Add(a)
	}
	return sum
}

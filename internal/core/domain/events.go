package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Business event payloads. Producers hand these over with every monetary figure already computed.

// FieldReportCompletion is emitted when a field job is closed out.
type FieldReportCompletion struct {
	ReportID   string    `json:"reportID"`
	ReportDate time.Time `json:"reportDate"`
	SiteName   string    `json:"siteName"`
	ClientName string    `json:"clientName"`

	ContractSum     decimal.Decimal `json:"contractSum"`
	RigFeeCharged   decimal.Decimal `json:"rigFeeCharged"`
	MaterialsIncome decimal.Decimal `json:"materialsIncome"`

	// How income was received. Whatever is not covered stays outstanding as a receivable.
	CashReceived        decimal.Decimal `json:"cashReceived"`
	MobileMoneyReceived decimal.Decimal `json:"mobileMoneyReceived"`
	BankDeposited       decimal.Decimal `json:"bankDeposited"`

	TotalWages        decimal.Decimal `json:"totalWages"`
	MaterialsCost     decimal.Decimal `json:"materialsCost"`
	OperatingExpenses decimal.Decimal `json:"operatingExpenses"`
	// CostsPaid is the portion of costs paid out in cash on site; the rest is payable.
	CostsPaid decimal.Decimal `json:"costsPaid"`

	CreatedBy string `json:"createdBy"`
}

// MaterialsPurchase is emitted when materials are received into inventory.
type MaterialsPurchase struct {
	PurchaseID   string          `json:"purchaseID"`
	PurchaseDate time.Time       `json:"purchaseDate"`
	Supplier     string          `json:"supplier"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
	CreatedBy    string          `json:"createdBy"`
}

// PosSale is a completed point-of-sale transaction.
type PosSale struct {
	SaleID        string          `json:"saleID"`
	SaleNumber    string          `json:"saleNumber"`
	SaleDate      time.Time       `json:"saleDate"`
	StoreCode     string          `json:"storeCode"`
	StoreName     string          `json:"storeName"`
	CustomerName  string          `json:"customerName"`
	CashierID     string          `json:"cashierID"`
	Items         []PosSaleItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	TaxTotal      decimal.Decimal `json:"taxTotal"`
	Total         decimal.Decimal `json:"total"`
	Payments      []PosPayment    `json:"payments"`
}

// PosSaleItem is one line of a sale. LineTotal is gross of discount and tax.
type PosSaleItem struct {
	ItemID     string          `json:"itemID"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	CostAmount decimal.Decimal `json:"costAmount"`
}

// PosPayment is one tender applied to a sale.
type PosPayment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// PosRefund returns some or all lines of an earlier sale.
type PosRefund struct {
	RefundID       string          `json:"refundID"`
	RefundNumber   string          `json:"refundNumber"`
	RefundDate     time.Time       `json:"refundDate"`
	OriginalSaleID string          `json:"originalSaleID"`
	StoreCode      string          `json:"storeCode"`
	Reason         string          `json:"reason"`
	RefundMethod   string          `json:"refundMethod"`
	Items          []PosRefundItem `json:"items"`
	ApprovedBy     string          `json:"approvedBy"`
}

// PosRefundItem is one refunded sale line.
type PosRefundItem struct {
	SaleItemID     string          `json:"saleItemID"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Amount         decimal.Decimal `json:"amount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	CostAmount     decimal.Decimal `json:"costAmount"`
	Restock        bool            `json:"restock"`
}

// Total is the amount handed back to the customer.
func (r PosRefund) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.Amount).Sub(it.DiscountAmount).Add(it.TaxAmount)
	}
	return total
}

// PayrollPayment is a wage payment to a worker.
type PayrollPayment struct {
	PaymentID   string          `json:"paymentID"`
	PaymentDate time.Time       `json:"paymentDate"`
	WorkerName  string          `json:"workerName"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	CreatedBy   string          `json:"createdBy"`
}

// LoanDisbursement is a loan issued to a worker.
type LoanDisbursement struct {
	LoanID     string          `json:"loanID"`
	IssueDate  time.Time       `json:"issueDate"`
	WorkerName string          `json:"workerName"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	CreatedBy  string          `json:"createdBy"`
}

// LoanRepayment is a worker paying back part of a loan.
type LoanRepayment struct {
	RepaymentID   string          `json:"repaymentID"`
	RepaymentDate time.Time       `json:"repaymentDate"`
	WorkerName    string          `json:"workerName"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	CreatedBy     string          `json:"createdBy"`
}

package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// EventParams identifies a business event in the URI.
type EventParams struct {
	SourceType string `uri:"sourceType" binding:"required,sourcetype"`
	SourceID   string `uri:"sourceID" binding:"required,max=128"`
}

// EventResponse is returned by the synchronous producer endpoint. It never carries an
// error: a failed posting shows up as Posted=false with no entry, and in the logs and
// the unreconciled report.
type EventResponse struct {
	Posted  bool    `json:"posted"`
	EntryID *string `json:"entryID,omitempty"`
}

// ToEventResponse converts a producer result.
func ToEventResponse(result domain.PostingResult) EventResponse {
	resp := EventResponse{Posted: result.Posted}
	if result.Entry != nil {
		id := result.Entry.EntryID
		resp.EntryID = &id
	}
	return resp
}

// DecodeEventPayload decodes a JSON body into the payload type of sourceType.
// Unknown fields are rejected so a typo cannot silently zero an amount.
func DecodeEventPayload(sourceType domain.SourceType, body []byte) (any, error) {
	var payload any
	switch sourceType {
	case domain.SourceFieldReport:
		payload = &domain.FieldReportCompletion{}
	case domain.SourceMaterialsPurchase:
		payload = &domain.MaterialsPurchase{}
	case domain.SourcePosSale:
		payload = &domain.PosSale{}
	case domain.SourcePosRefund:
		payload = &domain.PosRefund{}
	case domain.SourcePayrollPayment:
		payload = &domain.PayrollPayment{}
	case domain.SourceLoanDisbursement:
		payload = &domain.LoanDisbursement{}
	case domain.SourceLoanRepayment:
		payload = &domain.LoanRepayment{}
	default:
		return nil, fmt.Errorf("source type %q cannot be posted as an event", sourceType)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", sourceType, err)
	}
	return payload, nil
}

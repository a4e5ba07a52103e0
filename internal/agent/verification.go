package agent

import (
	"loanflow/internal/models"
)

// VerifyCustomer checks registry record presence and contact completeness.
func VerifyCustomer(cust *models.Customer, customerID string) VerificationResult {
	if customerID == "" {
		return VerificationResult{Passed: false, Issues: []string{"no_customer_id"}}
	}
	if cust == nil {
		return VerificationResult{Passed: false, Issues: []string{"customer_not_found"}}
	}

	var issues []string
	if cust.Phone == "" {
		issues = append(issues, "missing_phone")
	}
	if cust.Address == "" {
		issues = append(issues, "missing_address")
	}
	return VerificationResult{Passed: len(issues) == 0, Issues: issues}
}

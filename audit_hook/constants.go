package audithook

// Action constants for audit events.
const (
	// Unit actions
	ActionUnitCreated   = "unit.created"
	ActionUnitDeleted   = "unit.deleted"
	ActionStatusChanged = "unit.status_changed"

	// Stay actions
	ActionCheckedIn     = "stay.checked_in"
	ActionChargeAdded   = "folio.charge_added"
	ActionChargeRemoved = "folio.charge_removed"
	ActionFolioSettled  = "folio.settled"
	ActionInvoiceIssued = "folio.invoice_issued"

	// Tenancy actions
	ActionTenancyStarted = "tenancy.started"
	ActionTenancyEnded   = "tenancy.ended"
	ActionMonthBilled    = "tenancy.month_billed"
	ActionMonthPaid      = "tenancy.month_paid"

	// Alert actions
	ActionCheckoutDue = "alert.checkout_due"
)

// Resource constants for audit events.
const (
	ResourceUnit    = "unit"
	ResourceFolio   = "folio"
	ResourcePayment = "payment"
	ResourceTenancy = "tenancy"
	ResourceAlert   = "alert"
)

// Category constants for audit events.
const (
	CategoryProperty     = "property"
	CategoryHousekeeping = "housekeeping"
	CategoryStay         = "stay"
	CategoryBilling      = "billing"
	CategoryPayment      = "payment"
	CategoryOperations   = "operations"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)

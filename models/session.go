// File: models/session.go
package models

import "github.com/shopspring/decimal"

// Step names the wizard and the input it is waiting for.
type Step string

const (
	StepNone Step = ""

	// Counterparty onboarding.
	StepCounterpartyName           Step = "counterparty:name"
	StepCounterpartyTaxID          Step = "counterparty:taxId"
	StepCounterpartyAddress        Step = "counterparty:address"
	StepCounterpartyRegNumber      Step = "counterparty:regNumber"
	StepCounterpartySignatoryTitle Step = "counterparty:signatoryTitle"
	StepCounterpartySignatoryName  Step = "counterparty:signatoryName"
	StepCounterpartyBasis          Step = "counterparty:basis"
	StepCounterpartyBank           Step = "counterparty:bank"
	StepCounterpartyRoutingCode    Step = "counterparty:routingCode"
	StepCounterpartyAccount        Step = "counterparty:account"
	StepCounterpartyCorrAccount    Step = "counterparty:corrAccount"

	// Appendix creation.
	StepAppendixEstimate Step = "appendix:estimate"
	StepAppendixPeriod   Step = "appendix:period"
	StepAppendixAddress  Step = "appendix:address"

	// Waybill creation.
	StepWaybillDate           Step = "waybill:date"
	StepWaybillCargo          Step = "waybill:cargo"
	StepWaybillWeight         Step = "waybill:weight"
	StepWaybillSender         Step = "waybill:sender"
	StepWaybillReceiver       Step = "waybill:receiver"
	StepWaybillReceiverCustom Step = "waybill:receiverCustom"
	StepWaybillAddress        Step = "waybill:address"
	StepWaybillVehicleBrand   Step = "waybill:vehicleBrand"
	StepWaybillVehiclePlate   Step = "waybill:vehiclePlate"
	StepWaybillPieces         Step = "waybill:pieces"
	StepWaybillDriver         Step = "waybill:driver"

	// Project upload.
	StepProjectName        Step = "project:name"
	StepProjectPhotos      Step = "project:photos"
	StepProjectDescription Step = "project:description"

	// Trust document creation.
	StepTrustName      Step = "trust:name"
	StepTrustPassport  Step = "trust:passport"
	StepTrustIssuer    Step = "trust:issuer"
	StepTrustIssueDate Step = "trust:issueDate"

	// Expense entry.
	StepExpenseSheet             Step = "expense:sheet"
	StepExpenseContributorChoice Step = "expense:contributorChoice"
	StepExpenseContributor       Step = "expense:contributor"
	StepExpenseLabel             Step = "expense:label"
	StepExpenseAmount            Step = "expense:amount"

	// Free-text relay to the group chat.
	StepRelayMessage Step = "relay:message"

	// Single-step file uploads.
	StepContractUpload  Step = "contract:upload"
	StepContractReplace Step = "contract:replace"
	StepAppendixUpload  Step = "appendix:upload"
	StepAppendixReplace Step = "appendix:replace"
)

// AllSteps lists every wizard step except StepNone.
func AllSteps() []Step {
	return []Step{
		StepCounterpartyName, StepCounterpartyTaxID, StepCounterpartyAddress,
		StepCounterpartyRegNumber, StepCounterpartySignatoryTitle,
		StepCounterpartySignatoryName, StepCounterpartyBasis, StepCounterpartyBank,
		StepCounterpartyRoutingCode, StepCounterpartyAccount, StepCounterpartyCorrAccount,
		StepAppendixEstimate, StepAppendixPeriod, StepAppendixAddress,
		StepWaybillDate, StepWaybillCargo, StepWaybillWeight, StepWaybillSender,
		StepWaybillReceiver, StepWaybillReceiverCustom, StepWaybillAddress,
		StepWaybillVehicleBrand, StepWaybillVehiclePlate, StepWaybillPieces,
		StepWaybillDriver,
		StepProjectName, StepProjectPhotos, StepProjectDescription,
		StepTrustName, StepTrustPassport, StepTrustIssuer, StepTrustIssueDate,
		StepExpenseSheet, StepExpenseContributorChoice, StepExpenseContributor,
		StepExpenseLabel, StepExpenseAmount,
		StepRelayMessage,
		StepContractUpload, StepContractReplace, StepAppendixUpload, StepAppendixReplace,
	}
}

// LineItem is one row of the services table in an appendix.
type LineItem struct {
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Quantity    string          `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// WaybillDraft accumulates waybill fields.
type WaybillDraft struct {
	Date         string `json:"date"`
	Cargo        string `json:"cargo"`
	Weight       string `json:"weight"`
	Sender       string `json:"sender"`
	Receiver     string `json:"receiver"`
	Address      string `json:"address"`
	VehicleBrand string `json:"vehicleBrand"`
	VehiclePlate string `json:"vehiclePlate"`
	Pieces       string `json:"pieces"`
	Driver       string `json:"driver"`
}

// AppendixDraft accumulates the parsed estimate and service terms.
type AppendixDraft struct {
	Items    []LineItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	VAT      decimal.Decimal `json:"vat"`
	SheetURL string          `json:"sheetUrl,omitempty"`
	Period   string          `json:"period"`
	Address  string          `json:"address"`
}

// ProjectDraft accumulates an uploaded project.
type ProjectDraft struct {
	Name           string   `json:"name"`
	Photos         []string `json:"photos"`
	Description    string   `json:"description,omitempty"`
	DescriptionURL string   `json:"descriptionUrl,omitempty"`
}

// TrustDraft accumulates the principal's details.
type TrustDraft struct {
	FullName  string `json:"fullName"`
	Passport  string `json:"passport"`
	IssuedBy  string `json:"issuedBy"`
	IssueDate string `json:"issueDate"`
}

// ExpenseDraft accumulates an expense entry. Sheets caches the selectable tabs.
type ExpenseDraft struct {
	Sheets      []string `json:"sheets"`
	Page        int      `json:"page"`
	Sheet       string   `json:"sheet"`
	Contributor string   `json:"contributor"`
	Label       string   `json:"label"`
}

// Session is the per-chat conversation state. At most one wizard is active.
type Session struct {
	Step Step `json:"step"`

	// CounterpartyID targets counterparty-scoped wizards.
	CounterpartyID string `json:"counterpartyId,omitempty"`
	// ItemNumber targets replace wizards.
	ItemNumber int `json:"itemNumber,omitempty"`

	Counterparty *Counterparty  `json:"counterparty,omitempty"`
	Appendix     *AppendixDraft `json:"appendix,omitempty"`
	Waybill      *WaybillDraft  `json:"waybill,omitempty"`
	Project      *ProjectDraft  `json:"project,omitempty"`
	Trust        *TrustDraft    `json:"trust,omitempty"`
	Expense      *ExpenseDraft  `json:"expense,omitempty"`
}

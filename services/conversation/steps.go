package conversation

import (
	"context"

	"qartelbot/models"
	"qartelbot/services/menu"
)

// result tells settle what to do with the session after a step.
type result int

const (
	// resultStay keeps the stored session as it is.
	resultStay result = iota
	// resultAdvance stores the mutated session and prompts for its step.
	resultAdvance
	// resultDone ends the wizard.
	resultDone
)

type stepFunc func(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error)

// stepHandlers must cover every models.AllSteps entry.
var stepHandlers = map[models.Step]stepFunc{
	models.StepCounterpartyName:           counterpartyField,
	models.StepCounterpartyTaxID:          counterpartyField,
	models.StepCounterpartyAddress:        counterpartyField,
	models.StepCounterpartyRegNumber:      counterpartyField,
	models.StepCounterpartySignatoryTitle: counterpartyField,
	models.StepCounterpartySignatoryName:  counterpartyField,
	models.StepCounterpartyBasis:          counterpartyField,
	models.StepCounterpartyBank:           counterpartyField,
	models.StepCounterpartyRoutingCode:    counterpartyField,
	models.StepCounterpartyAccount:        counterpartyField,
	models.StepCounterpartyCorrAccount:    counterpartyField,

	models.StepAppendixEstimate: appendixEstimate,
	models.StepAppendixPeriod:   appendixPeriod,
	models.StepAppendixAddress:  appendixAddress,

	models.StepWaybillDate:           waybillText,
	models.StepWaybillCargo:          waybillText,
	models.StepWaybillWeight:         waybillText,
	models.StepWaybillSender:         waybillSender,
	models.StepWaybillReceiver:       waybillReceiver,
	models.StepWaybillReceiverCustom: waybillText,
	models.StepWaybillAddress:        waybillText,
	models.StepWaybillVehicleBrand:   waybillText,
	models.StepWaybillVehiclePlate:   waybillText,
	models.StepWaybillPieces:         waybillText,
	models.StepWaybillDriver:         waybillText,

	models.StepProjectName:        projectName,
	models.StepProjectPhotos:      projectPhotos,
	models.StepProjectDescription: projectDescription,

	models.StepTrustName:      trustText,
	models.StepTrustPassport:  trustText,
	models.StepTrustIssuer:    trustText,
	models.StepTrustIssueDate: trustText,

	models.StepExpenseSheet:             expenseSheet,
	models.StepExpenseContributorChoice: expenseContributorChoice,
	models.StepExpenseContributor:       expenseContributor,
	models.StepExpenseLabel:             expenseLabel,
	models.StepExpenseAmount:            expenseAmount,

	models.StepRelayMessage: relayMessage,

	models.StepContractUpload:  itemUpload,
	models.StepContractReplace: itemReplace,
	models.StepAppendixUpload:  itemUpload,
	models.StepAppendixReplace: itemReplace,
}

// stepCallbacks are buttons answered by the active step rather than the menu.
var stepCallbacks = map[string]bool{
	menu.WaybillSender:      true,
	menu.WaybillReceiver:    true,
	menu.ExpensePage:        true,
	menu.ExpenseSheet:       true,
	menu.ExpenseContributor: true,
}

// stepRole is the lowest role allowed to continue a wizard.
func stepRole(step models.Step) models.Role {
	if step == models.StepRelayMessage {
		return models.RoleVisitor
	}
	return models.RoleManager
}

// callback extracts the arguments of a step button matching action.
func callback(ev Event, action string) ([]string, bool) {
	if ev.Kind != KindCallback {
		return nil, false
	}
	got, args := menu.Split(ev.Data)
	if got != action {
		return nil, false
	}
	return args, true
}

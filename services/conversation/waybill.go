package conversation

import (
	"context"
	"strconv"

	"qartelbot/models"
	"qartelbot/services/document"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"

	"go.uber.org/zap"
)

type party struct {
	label string
	value string
}

// waybillParties are the fixed senders and receivers offered as buttons.
var waybillParties = []party{
	{label: "ИП Киреичев А.С.", value: "ИП Киреичев А.С. ИНН:772411254376"},
	{label: "ИП Фадеев А.Д.", value: "ИП Фадеев А.Д. ИНН: Добавим позже"},
}

const customParty = "custom"

func startWaybill(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	return e.begin(ctx, ev.ChatID, &models.Session{
		Step:    models.StepWaybillDate,
		Waybill: &models.WaybillDraft{},
	})
}

// pickParty resolves a party button to its full value.
func pickParty(ev Event, action string) (value string, custom bool, ok bool) {
	args, ok := callback(ev, action)
	if !ok || len(args) != 1 {
		return "", false, false
	}
	if args[0] == customParty {
		return "", true, true
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= len(waybillParties) {
		return "", false, false
	}
	return waybillParties[i].value, false, true
}

func waybillSender(_ *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	value, custom, ok := pickParty(ev, menu.WaybillSender)
	if !ok || custom {
		return resultStay, invalid("")
	}
	s.Waybill.Sender = value
	s.Step = models.StepWaybillReceiver
	return resultAdvance, nil
}

func waybillReceiver(_ *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	value, custom, ok := pickParty(ev, menu.WaybillReceiver)
	if !ok {
		return resultStay, invalid("")
	}
	if custom {
		s.Step = models.StepWaybillReceiverCustom
		return resultAdvance, nil
	}
	s.Waybill.Receiver = value
	s.Step = models.StepWaybillAddress
	return resultAdvance, nil
}

// waybillText handles every free-text waybill step; the driver step renders the document.
func waybillText(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	w := s.Waybill
	switch s.Step {
	case models.StepWaybillDate:
		w.Date, s.Step = text, models.StepWaybillCargo
	case models.StepWaybillCargo:
		w.Cargo, s.Step = text, models.StepWaybillWeight
	case models.StepWaybillWeight:
		w.Weight, s.Step = text, models.StepWaybillSender
	case models.StepWaybillReceiverCustom:
		w.Receiver, s.Step = text, models.StepWaybillAddress
	case models.StepWaybillAddress:
		w.Address, s.Step = text, models.StepWaybillVehicleBrand
	case models.StepWaybillVehicleBrand:
		w.VehicleBrand, s.Step = text, models.StepWaybillVehiclePlate
	case models.StepWaybillVehiclePlate:
		w.VehiclePlate, s.Step = text, models.StepWaybillPieces
	case models.StepWaybillPieces:
		w.Pieces, s.Step = text, models.StepWaybillDriver
	case models.StepWaybillDriver:
		w.Driver = text
		return resultDone, e.issueWaybill(ctx, ev.ChatID, w)
	}
	return resultAdvance, nil
}

func (e *Engine) issueWaybill(ctx context.Context, chatID int64, w *models.WaybillDraft) error {
	file, err := e.renderer.Render(ctx, document.TemplateWaybill, waybillFields(w))
	if err != nil {
		e.logger.Error("waybill render failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return failWith("Произошла ошибка при создании ТН.", err)
	}
	if err := e.msg.SendDocument(ctx, chatID, "ТН.docx", file); err != nil {
		return failWith("Произошла ошибка при отправке ТН.", err)
	}
	e.send(ctx, messenger.Message{
		ChatID: chatID,
		Text:   "Транспортная накладная успешно создана!",
		Keyboard: messenger.Keyboard{
			messenger.Row(messenger.DataButton("Главное меню", menu.MainMenu)),
		},
	})
	return nil
}

package conversation

import (
	"fmt"
	"strconv"

	"qartelbot/models"
	"qartelbot/services/expense"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"
)

const skipHint = " (или отправьте 'пропустить', чтобы оставить поле пустым)"

var prompts = map[models.Step]string{
	models.StepCounterpartyName:           "Введите название контрагента:",
	models.StepCounterpartyTaxID:          "Введите ИНН/КПП контрагента (формат: ИНН/КПП):",
	models.StepCounterpartyAddress:        "Введите юридический адрес контрагента:",
	models.StepCounterpartyRegNumber:      "Введите ОГРН контрагента:",
	models.StepCounterpartySignatoryTitle: "Введите должность лица, подписывающего договор (ЛПР):",
	models.StepCounterpartySignatoryName:  "Введите ФИО лица, подписывающего договор (ЛПР):",
	models.StepCounterpartyBasis:          "Введите основание подписания договора (например, Устав):",
	models.StepCounterpartyBank:           "Введите название банка контрагента" + skipHint + ":",
	models.StepCounterpartyRoutingCode:    "Введите БИК банка контрагента" + skipHint + ":",
	models.StepCounterpartyAccount:        "Введите расчетный счет контрагента" + skipHint + ":",
	models.StepCounterpartyCorrAccount:    "Введите корреспондентский счет контрагента" + skipHint + ":",

	models.StepAppendixEstimate: "Excel‑файл со сметой, сэр",
	models.StepAppendixPeriod:   "Срок предоставления услуг, сэр:",
	models.StepAppendixAddress:  "Адрес предоставления услуг, сэр:",

	models.StepWaybillDate:           "Дату для ТН,сэр (например, 01.03.2025):",
	models.StepWaybillCargo:          "Введите конструкции:",
	models.StepWaybillWeight:         "Введите вес:",
	models.StepWaybillSender:         "Выберите грузоотправителя:",
	models.StepWaybillReceiver:       "Выберите грузополучателя:",
	models.StepWaybillReceiverCustom: "Введите грузополучателя:",
	models.StepWaybillAddress:        "Введите адрес выгрузки:",
	models.StepWaybillVehicleBrand:   "Введите марку автомобиля:",
	models.StepWaybillVehiclePlate:   "Введите гос.номер автомобиля:",
	models.StepWaybillPieces:         "Введите количество грузовых мест:",
	models.StepWaybillDriver:         "Введите ФИО водителя:",

	models.StepProjectName:        "Введите название проекта:",
	models.StepProjectPhotos:      "Фото проекта по одному, сэр. После загрузки всех фотографий напиши 'готово'.",
	models.StepProjectDescription: "Файл с описанием проекта или текстовое описание, сэр.",

	models.StepTrustName:      "ФИО в родительном падеже, сэр:",
	models.StepTrustPassport:  "Серия и номер паспорта, сэр:",
	models.StepTrustIssuer:    "Кем же он выдан, сэр?:",
	models.StepTrustIssueDate: "Дата выдачи, сэр:",

	models.StepExpenseSheet:             "Выберите лист:",
	models.StepExpenseContributorChoice: "Выберите имя для столбца A:",
	models.StepExpenseContributor:       "Назовите контрагента, сэр:",
	models.StepExpenseLabel:             "Наименование расхода, сэр:",
	models.StepExpenseAmount:            "Сумма, сэр:",

	models.StepRelayMessage: "Напишите ваше сообщение, и оно будет передано нашей команде:",

	models.StepContractUpload:  "Отправьте файл нового договора для загрузки.",
	models.StepContractReplace: "Отправьте новый файл для замены договора.",
	models.StepAppendixUpload:  "Отправьте файл нового приложения для загрузки.",
	models.StepAppendixReplace: "Отправьте новый файл для замены приложения.",
}

// promptFor builds the message asking for the input of s.Step.
func (e *Engine) promptFor(s *models.Session) messenger.Message {
	msg := messenger.Message{Text: prompts[s.Step]}
	switch s.Step {
	case models.StepWaybillSender:
		msg.Keyboard = partyKeyboard(menu.WaybillSender, false)
	case models.StepWaybillReceiver:
		msg.Keyboard = partyKeyboard(menu.WaybillReceiver, true)
	case models.StepExpenseSheet:
		msg.Keyboard = sheetKeyboard(s.Expense)
	case models.StepExpenseContributorChoice:
		msg.Text = fmt.Sprintf("Вкладка %q выбрана. %s", s.Expense.Sheet, msg.Text)
		kb := messenger.Keyboard{}
		for i, name := range e.settings.Contributors {
			kb = append(kb, messenger.Row(messenger.DataButton(name, menu.Data(menu.ExpenseContributor, strconv.Itoa(i)))))
		}
		msg.Keyboard = append(kb, messenger.Row(messenger.DataButton("🔙 Вернуться в главное меню", menu.MainMenu)))
	case models.StepExpenseContributor:
		msg.Text = fmt.Sprintf("Вкладка %q выбрана. %s", s.Expense.Sheet, msg.Text)
	}
	return msg
}

func partyKeyboard(action string, custom bool) messenger.Keyboard {
	kb := messenger.Keyboard{}
	for i, p := range waybillParties {
		kb = append(kb, messenger.Row(messenger.DataButton(p.label, menu.Data(action, strconv.Itoa(i)))))
	}
	if custom {
		kb = append(kb, messenger.Row(messenger.DataButton("Добавить свое", menu.Data(action, customParty))))
	}
	return kb
}

// sheetKeyboard shows one page of sheets; button data carries the absolute index.
func sheetKeyboard(d *models.ExpenseDraft) messenger.Keyboard {
	kb := messenger.Keyboard{}
	if d == nil {
		return kb
	}
	start, items, hasPrev, hasNext := expense.Page(d.Sheets, d.Page, expense.PageSize)
	for i, name := range items {
		kb = append(kb, messenger.Row(messenger.DataButton(name, menu.Data(menu.ExpenseSheet, strconv.Itoa(start+i)))))
	}
	var nav []messenger.Button
	if hasPrev {
		nav = append(nav, messenger.DataButton("⬅️ Назад", menu.Data(menu.ExpensePage, strconv.Itoa(d.Page-1))))
	}
	if hasNext {
		nav = append(nav, messenger.DataButton("➡️ Вперёд", menu.Data(menu.ExpensePage, strconv.Itoa(d.Page+1))))
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}
	return append(kb, messenger.Row(messenger.DataButton("🔙 Вернуться в главное меню", menu.MainMenu)))
}

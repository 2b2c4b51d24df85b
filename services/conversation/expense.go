package conversation

import (
	"context"
	"errors"
	"strconv"

	"qartelbot/models"
	"qartelbot/services/expense"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"

	"go.uber.org/zap"
)

func startExpense(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	e.say(ctx, ev.ChatID, "⏳ Загружаю список листов, это надолго...")
	all, err := e.expenses.Sheets(ctx)
	if err != nil {
		return failWith("Ошибка при получении листов.", err)
	}
	sheets := expense.FilterSheets(all, e.settings.ReservedSheets)
	if len(sheets) == 0 {
		e.say(ctx, ev.ChatID, "Нет видимых листов в таблице.")
		return nil
	}
	return e.begin(ctx, ev.ChatID, &models.Session{
		Step:    models.StepExpenseSheet,
		Expense: &models.ExpenseDraft{Sheets: sheets},
	})
}

// expenseSheet handles page navigation and sheet selection.
func expenseSheet(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	d := s.Expense
	if args, ok := callback(ev, menu.ExpensePage); ok && len(args) == 1 {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return resultStay, invalid("")
		}
		if ev.MessageID != 0 {
			if err := e.msg.ClearButtons(ctx, ev.ChatID, ev.MessageID); err != nil {
				e.logger.Debug("failed to clear sheet buttons", zap.Error(err))
			}
		}
		start, _, _, _ := expense.Page(d.Sheets, page, expense.PageSize)
		d.Page = start / expense.PageSize
		return resultAdvance, nil
	}

	args, ok := callback(ev, menu.ExpenseSheet)
	if !ok || len(args) != 1 {
		return resultStay, invalid("")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= len(d.Sheets) {
		return resultStay, invalid("")
	}
	d.Sheet = d.Sheets[i]
	if d.Sheet == e.settings.PersonalSheet && len(e.settings.Contributors) > 0 {
		s.Step = models.StepExpenseContributorChoice
	} else {
		s.Step = models.StepExpenseContributor
	}
	return resultAdvance, nil
}

func expenseContributorChoice(e *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	args, ok := callback(ev, menu.ExpenseContributor)
	if !ok || len(args) != 1 {
		return resultStay, invalid("")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= len(e.settings.Contributors) {
		return resultStay, invalid("")
	}
	s.Expense.Contributor = e.settings.Contributors[i]
	s.Step = models.StepExpenseLabel
	return resultAdvance, nil
}

func expenseContributor(_ *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	s.Expense.Contributor = text
	s.Step = models.StepExpenseLabel
	return resultAdvance, nil
}

func expenseLabel(_ *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	s.Expense.Label = text
	s.Step = models.StepExpenseAmount
	return resultAdvance, nil
}

// expenseAmount posts the expense once the amount parses.
func expenseAmount(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	text, _ := ev.text()
	amount, ok := expense.ParseAmount(text)
	if !ok {
		return resultStay, invalid("Пожалуйста, введите корректную сумму.")
	}

	d := s.Expense
	err := e.expenses.AddExpense(ctx, expense.Expense{
		Sheet:       d.Sheet,
		Contributor: d.Contributor,
		Label:       d.Label,
		Amount:      amount,
		Date:        e.now(),
	})
	if err != nil {
		var se *expense.ServiceError
		if errors.As(err, &se) {
			return resultDone, failWith("Ошибка: "+se.Error(), err)
		}
		return resultDone, failWith("Ошибка: Не удалось связаться с сервером. Проверьте подключение.", err)
	}

	e.send(ctx, messenger.Message{
		ChatID: ev.ChatID,
		Text:   "✅ Все получилось! Гениально!",
		Keyboard: messenger.Keyboard{
			messenger.Row(messenger.DataButton("➕ Добавить еще расход", menu.ExpenseStart)),
			messenger.Row(messenger.DataButton("🔙 Вернуться в главное меню", menu.MainMenu)),
		},
	})
	return resultDone, nil
}

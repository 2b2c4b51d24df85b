package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	counterpartyRepo "qartelbot/database/repository/counterparty"
	"qartelbot/models"
	"qartelbot/services/document"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"

	"go.uber.org/zap"
)

const skipToken = "пропустить"

// onboardingField is one step of counterparty onboarding, in order.
type onboardingField struct {
	step      models.Step
	set       func(c *models.Counterparty, v string)
	skippable bool
}

var onboarding = []onboardingField{
	{step: models.StepCounterpartyName, set: func(c *models.Counterparty, v string) { c.Name = v }},
	{step: models.StepCounterpartyTaxID, set: func(c *models.Counterparty, v string) { c.TaxID = v }},
	{step: models.StepCounterpartyAddress, set: func(c *models.Counterparty, v string) { c.LegalAddress = v }},
	{step: models.StepCounterpartyRegNumber, set: func(c *models.Counterparty, v string) { c.RegNumber = v }},
	{step: models.StepCounterpartySignatoryTitle, set: func(c *models.Counterparty, v string) { c.SignatoryTitle = v }},
	{step: models.StepCounterpartySignatoryName, set: func(c *models.Counterparty, v string) { c.SignatoryName = v }},
	{step: models.StepCounterpartyBasis, set: func(c *models.Counterparty, v string) { c.SigningBasis = v }},
	{step: models.StepCounterpartyBank, set: func(c *models.Counterparty, v string) { c.BankName = v }, skippable: true},
	{step: models.StepCounterpartyRoutingCode, set: func(c *models.Counterparty, v string) { c.RoutingCode = v }, skippable: true},
	{step: models.StepCounterpartyAccount, set: func(c *models.Counterparty, v string) { c.Account = v }, skippable: true},
	{step: models.StepCounterpartyCorrAccount, set: func(c *models.Counterparty, v string) { c.CorrAccount = v }, skippable: true},
}

func startCounterparty(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	draft := models.NewCounterparty()
	return e.begin(ctx, ev.ChatID, &models.Session{
		Step:         models.StepCounterpartyName,
		Counterparty: &draft,
	})
}

// counterpartyField stores one onboarding answer and saves the record after the last.
func counterpartyField(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	idx := -1
	for i, f := range onboarding {
		if f.step == s.Step {
			idx = i
			break
		}
	}
	if idx < 0 {
		return resultDone, fmt.Errorf("conversation: step %s is not an onboarding step", s.Step)
	}

	field := onboarding[idx]
	if !(field.skippable && strings.EqualFold(text, skipToken)) {
		field.set(s.Counterparty, text)
	}
	if idx+1 < len(onboarding) {
		s.Step = onboarding[idx+1].step
		return resultAdvance, nil
	}

	if err := e.counterparties.Create(ctx, s.Counterparty); err != nil {
		return resultDone, failWith("Произошла ошибка при добавлении контрагента.", err)
	}
	e.say(ctx, ev.ChatID, "Контрагент успешно добавлен в базу данных!")
	return resultDone, nil
}

func listCounterparties(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	list, err := e.counterparties.List(ctx)
	if err != nil {
		return failWith("Не удалось загрузить список контрагентов.", err)
	}
	if len(list) == 0 {
		e.say(ctx, ev.ChatID, "Список контрагентов пуст.")
		return nil
	}
	kb := messenger.Keyboard{}
	for _, c := range list {
		kb = append(kb, messenger.Row(messenger.DataButton(c.Name, menu.Data(menu.CounterpartyView, c.ID))))
	}
	kb = append(kb, menu.BackToMain()...)
	_, err = e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: "📋 Список контрагентов:", Keyboard: kb})
	return err
}

func counterpartyCard(c *models.Counterparty) string {
	return fmt.Sprintf(`📌 Контрагент: %s
ИНН/КПП: %s
Юр. адрес: %s
ОГРН: %s
ЛПР: %s (%s)
Основание: %s

📄 Договоров: %d
📌 Приложений: %d`,
		c.Name, c.TaxID, c.LegalAddress, c.RegNumber,
		orDefault(c.SignatoryName, notSpecified), orDefault(c.SignatoryTitle, notSpecified),
		orDefault(c.SigningBasis, notSpecified),
		len(c.Contracts), len(c.Appendices),
	)
}

func viewCounterparty(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
	id, err := arg(args, 0)
	if err != nil {
		return err
	}
	c, err := e.counterparties.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, "Ошибка: контрагент не найден.", "Не удалось загрузить контрагента.")
	}
	_, err = e.msg.Send(ctx, messenger.Message{
		ChatID: ev.ChatID,
		Text:   counterpartyCard(c),
		Keyboard: messenger.Keyboard{
			messenger.Row(messenger.DataButton("📄 Создать договор", menu.Data(menu.ContractNew, c.ID))),
			messenger.Row(messenger.DataButton("📌 Создать приложение", menu.Data(menu.AppendixNew, c.ID))),
			messenger.Row(messenger.DataButton("Показать все договоры", menu.Data(menu.ContractList, c.ID))),
			messenger.Row(messenger.DataButton("Показать все приложения", menu.Data(menu.AppendixList, c.ID))),
			messenger.Row(messenger.DataButton("В главное меню", menu.MainMenu)),
		},
	})
	return err
}

// nextNumbered retries add with a fresh counterparty snapshot while the
// chosen sequence number keeps being taken by a concurrent writer.
func (e *Engine) nextNumbered(ctx context.Context, id string, add func(c *models.Counterparty) (int, error)) (*models.Counterparty, int, error) {
	var lastErr error
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		c, err := e.counterparties.GetByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		n, err := add(c)
		if errors.Is(err, counterpartyRepo.ErrSequenceConflict) {
			lastErr = err
			continue
		}
		return c, n, err
	}
	return nil, 0, lastErr
}

// createContract renders the next contract of a counterparty and stores it.
func createContract(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
	id, err := arg(args, 0)
	if err != nil {
		return err
	}
	c, number, err := e.nextNumbered(ctx, id, func(c *models.Counterparty) (int, error) {
		n := c.NextContractNumber()
		now := e.now()
		file, err := e.renderer.Render(ctx, document.TemplateContract, contractFields(c, n, now))
		if err != nil {
			e.logger.Error("contract render failed", zap.String("counterparty_id", c.ID), zap.Int("number", n), zap.Error(err))
			return 0, failWith("Ошибка при формировании договора.", err)
		}
		if err := e.counterparties.AddContract(ctx, c.ID, models.Contract{Number: n, File: file, CreatedAt: now}); err != nil {
			return 0, err
		}
		if err := e.msg.SendDocument(ctx, ev.ChatID, fmt.Sprintf("Договор_%d.docx", n), file); err != nil {
			return n, failWith(fmt.Sprintf("Договор №%d создан, но не отправлен.", n), err)
		}
		return n, nil
	})
	if err != nil {
		return orNotFound(err, "Контрагент не найден.", "Произошла ошибка при создании договора.")
	}
	e.say(ctx, ev.ChatID, fmt.Sprintf("Договор №%d успешно создан для контрагента %s.", number, c.Name))
	return nil
}

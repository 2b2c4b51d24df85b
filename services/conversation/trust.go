package conversation

import (
	"context"
	"errors"
	"fmt"

	trustRepo "qartelbot/database/repository/trust"
	"qartelbot/models"
	"qartelbot/services/document"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"

	"go.uber.org/zap"
)

// sequenceAttempts bounds retries when two writers race for a sequence number.
const sequenceAttempts = 3

func showTrustMenu(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	_, err := e.msg.Send(ctx, messenger.Message{
		ChatID: ev.ChatID,
		Text:   "Ну че там?:",
		Keyboard: messenger.Keyboard{
			messenger.Row(messenger.DataButton("Создать доверенность", menu.TrustNew)),
			messenger.Row(messenger.DataButton("Показать доверенности", menu.TrustList)),
			messenger.Row(messenger.DataButton("В главное меню", menu.MainMenu)),
		},
	})
	return err
}

func startTrust(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	return e.begin(ctx, ev.ChatID, &models.Session{
		Step:  models.StepTrustName,
		Trust: &models.TrustDraft{},
	})
}

func listTrusts(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	docs, err := e.trusts.List(ctx)
	if err != nil {
		return failWith("Ошибка при получении доверенностей.", err)
	}
	if len(docs) == 0 {
		e.say(ctx, ev.ChatID, "Доверенности отсутствуют.")
		return nil
	}
	kb := messenger.Keyboard{}
	for _, d := range docs {
		kb = append(kb, messenger.Row(messenger.DataButton(fmt.Sprintf("Доверенность №%d", d.Number), menu.Data(menu.TrustDownload, d.ID))))
	}
	kb = append(kb, menu.BackToMain()...)
	_, err = e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: "Выберите доверенность для скачивания:", Keyboard: kb})
	return err
}

func downloadTrust(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
	id, err := arg(args, 0)
	if err != nil {
		return err
	}
	doc, err := e.trusts.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, "Доверенность не найдена.", "Ошибка при получении доверенности.")
	}
	return e.msg.SendDocument(ctx, ev.ChatID, fmt.Sprintf("Доверенность_%d.docx", doc.Number), doc.File)
}

// trustText collects the four principal fields; the last one issues the document.
func trustText(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	d := s.Trust
	switch s.Step {
	case models.StepTrustName:
		d.FullName, s.Step = text, models.StepTrustPassport
	case models.StepTrustPassport:
		d.Passport, s.Step = text, models.StepTrustIssuer
	case models.StepTrustIssuer:
		d.IssuedBy, s.Step = text, models.StepTrustIssueDate
	case models.StepTrustIssueDate:
		d.IssueDate = text
		return resultDone, e.issueTrust(ctx, ev.ChatID, d)
	}
	return resultAdvance, nil
}

// issueTrust numbers, renders and stores a power of attorney.
func (e *Engine) issueTrust(ctx context.Context, chatID int64, d *models.TrustDraft) error {
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		number, err := e.trusts.NextNumber(ctx)
		if err != nil {
			return failWith("Ошибка при создании доверенности.", err)
		}
		now := e.now()
		file, err := e.renderer.Render(ctx, document.TemplateTrust, trustFields(d, number, now))
		if err != nil {
			e.logger.Error("trust render failed", zap.Int("number", number), zap.Error(err))
			return failWith("Ошибка при формировании доверенности.", err)
		}
		doc := &models.TrustDocument{
			Number:    number,
			File:      file,
			FullName:  d.FullName,
			Passport:  d.Passport,
			IssuedBy:  d.IssuedBy,
			IssueDate: d.IssueDate,
		}
		err = e.trusts.Create(ctx, doc)
		if errors.Is(err, trustRepo.ErrNumberTaken) {
			continue
		}
		if err != nil {
			return failWith("Ошибка при создании доверенности.", err)
		}
		if err := e.msg.SendDocument(ctx, chatID, fmt.Sprintf("Доверенность_%d.docx", number), file); err != nil {
			return failWith("Доверенность создана, но не отправлена.", err)
		}
		e.say(ctx, chatID, fmt.Sprintf("Доверенность №%d успешно создана.", number))
		return nil
	}
	return failWith("Ошибка при создании доверенности.", trustRepo.ErrNumberTaken)
}

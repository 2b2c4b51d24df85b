package conversation

import (
	"context"
	"errors"
	"fmt"

	counterpartyRepo "qartelbot/database/repository/counterparty"
	"qartelbot/models"
	"qartelbot/services/document"
	"qartelbot/services/estimate"

	"go.uber.org/zap"
)

func startAppendix(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
	id, err := arg(args, 0)
	if err != nil {
		return err
	}
	c, err := e.counterparties.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, "Контрагент не найден.", "Не удалось загрузить контрагента.")
	}
	if _, ok := c.LastContract(); !ok {
		e.say(ctx, ev.ChatID, noContractText)
		return nil
	}
	return e.begin(ctx, ev.ChatID, &models.Session{
		Step:           models.StepAppendixEstimate,
		CounterpartyID: id,
		Appendix:       &models.AppendixDraft{},
	})
}

// appendixEstimate accepts an estimate workbook or a Google Sheets link.
func appendixEstimate(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	d := s.Appendix
	switch {
	case ev.Kind == KindDocument && ev.File != nil:
		if !estimate.IsSpreadsheetMIME(ev.File.MIME) {
			return resultStay, invalid("Excel‑файл, сэр.")
		}
		data, err := e.download(ctx, ev.File)
		if err != nil {
			return resultDone, failWith("Ошибка при обработке файла. Увы.", err)
		}
		est, err := estimate.Parse(data)
		if err != nil {
			return resultDone, failWith("Ошибка при обработке файла. Увы.", err)
		}
		d.Items, d.Total, d.VAT = est.Items, est.Total, est.VAT
		e.logger.Debug("estimate parsed",
			zap.String("counterparty_id", s.CounterpartyID),
			zap.Int("items", len(est.Items)),
			zap.String("total", est.Total.String()),
		)
	default:
		text, ok := ev.text()
		if !ok || !estimate.IsSheetsURL(text) {
			return resultStay, invalid("Не удалось распознать файл или ссылку. Увы.")
		}
		d.SheetURL = text
	}
	s.Step = models.StepAppendixPeriod
	return resultAdvance, nil
}

func appendixPeriod(_ *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	s.Appendix.Period = text
	s.Step = models.StepAppendixAddress
	return resultAdvance, nil
}

// appendixAddress completes the wizard: the appendix is numbered, rendered
// against the latest contract and stored.
func appendixAddress(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	text, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	d := s.Appendix
	d.Address = text

	c, number, err := e.nextNumbered(ctx, s.CounterpartyID, func(c *models.Counterparty) (int, error) {
		last, ok := c.LastContract()
		if !ok {
			return 0, counterpartyRepo.ErrNoContract
		}
		n := c.NextAppendixNumber()
		now := e.now()
		file, err := e.renderer.Render(ctx, document.TemplateAppendix, appendixFields(c, &last, n, d, now))
		if err != nil {
			e.logger.Error("appendix render failed",
				zap.String("counterparty_id", c.ID),
				zap.Int("number", n),
				zap.Int("contract_number", last.Number),
				zap.Error(err),
			)
			return 0, failWith("Ошибка при формировании приложения.", err)
		}
		err = e.counterparties.AddAppendix(ctx, c.ID, models.Appendix{
			Number:         n,
			File:           file,
			CreatedAt:      now,
			ContractNumber: last.Number,
		})
		if err != nil {
			return 0, err
		}
		if err := e.msg.SendDocument(ctx, ev.ChatID, fmt.Sprintf("Приложение_%d.docx", n), file); err != nil {
			return n, failWith(fmt.Sprintf("Приложение №%d создано, но не отправлено.", n), err)
		}
		return n, nil
	})
	if errors.Is(err, counterpartyRepo.ErrNoContract) {
		return resultDone, failWith(noContractText, err)
	}
	if err != nil {
		return resultDone, orNotFound(err, "Контрагент не найден.", "Произошла ошибка при создании приложения.")
	}
	e.say(ctx, ev.ChatID, fmt.Sprintf("Приложение №%d успешно создано для контрагента %s.", number, c.Name))
	return resultDone, nil
}

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	counterpartyRepo "qartelbot/database/repository/counterparty"
	"qartelbot/models"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"
)

const noContractText = "Сначала необходимо создать договор, чтобы привязать к нему приложение."

// itemKind describes one numbered document collection of a counterparty.
type itemKind struct {
	name       string
	filePrefix string

	list, sel, download, replace, del, upload string
	uploadStep, replaceStep                   models.Step

	emptyText   string
	chooseText  string
	uploadLabel string
	notFound    string
	labelFmt    string
	replacedFmt string
	deletedFmt  string
	uploadedFmt string

	numbers     func(c *models.Counterparty) []int
	file        func(c *models.Counterparty, n int) ([]byte, bool)
	add         func(e *Engine, ctx context.Context, c *models.Counterparty, file []byte) (int, error)
	replaceFile func(e *Engine, ctx context.Context, id string, n int, file []byte) error
	remove      func(e *Engine, ctx context.Context, id string, n int) error
}

var contractKind = &itemKind{
	name:        "contract",
	filePrefix:  "Договор_",
	list:        menu.ContractList,
	sel:         menu.ContractSelect,
	download:    menu.ContractDownload,
	replace:     menu.ContractReplace,
	del:         menu.ContractDelete,
	upload:      menu.ContractUpload,
	uploadStep:  models.StepContractUpload,
	replaceStep: models.StepContractReplace,
	emptyText:   "Нет созданных договоров для этого контрагента.",
	chooseText:  "Выберите договор для дальнейших действий:",
	uploadLabel: "Загрузить новый договор",
	notFound:    "Договор не найден.",
	labelFmt:    "Договор №%d",
	replacedFmt: "Договор №%d успешно заменён.",
	deletedFmt:  "Договор №%d успешно удалён.",
	uploadedFmt: "Новый договор №%d успешно загружен.",
	numbers: func(c *models.Counterparty) []int {
		out := make([]int, 0, len(c.Contracts))
		for _, ct := range c.Contracts {
			out = append(out, ct.Number)
		}
		return out
	},
	file: func(c *models.Counterparty, n int) ([]byte, bool) {
		ct, ok := c.FindContract(n)
		return ct.File, ok
	},
	add: func(e *Engine, ctx context.Context, c *models.Counterparty, file []byte) (int, error) {
		n := c.NextContractNumber()
		return n, e.counterparties.AddContract(ctx, c.ID, models.Contract{Number: n, File: file, CreatedAt: e.now()})
	},
	replaceFile: func(e *Engine, ctx context.Context, id string, n int, file []byte) error {
		return e.counterparties.ReplaceContractFile(ctx, id, n, file)
	},
	remove: func(e *Engine, ctx context.Context, id string, n int) error {
		return e.counterparties.DeleteContract(ctx, id, n)
	},
}

var appendixKind = &itemKind{
	name:        "appendix",
	filePrefix:  "Приложение_",
	list:        menu.AppendixList,
	sel:         menu.AppendixSelect,
	download:    menu.AppendixDownload,
	replace:     menu.AppendixReplace,
	del:         menu.AppendixDelete,
	upload:      menu.AppendixUpload,
	uploadStep:  models.StepAppendixUpload,
	replaceStep: models.StepAppendixReplace,
	emptyText:   "Нет созданных приложений для этого контрагента.",
	chooseText:  "Выберите приложение для дальнейших действий:",
	uploadLabel: "Загрузить новое приложение",
	notFound:    "Приложение не найдено.",
	labelFmt:    "Приложение №%d",
	replacedFmt: "Приложение №%d успешно заменено.",
	deletedFmt:  "Приложение №%d успешно удалено.",
	uploadedFmt: "Новое приложение №%d успешно загружено.",
	numbers: func(c *models.Counterparty) []int {
		out := make([]int, 0, len(c.Appendices))
		for _, a := range c.Appendices {
			out = append(out, a.Number)
		}
		return out
	},
	file: func(c *models.Counterparty, n int) ([]byte, bool) {
		a, ok := c.FindAppendix(n)
		return a.File, ok
	},
	// Uploaded appendices attach to the latest contract.
	add: func(e *Engine, ctx context.Context, c *models.Counterparty, file []byte) (int, error) {
		last, ok := c.LastContract()
		if !ok {
			return 0, counterpartyRepo.ErrNoContract
		}
		n := c.NextAppendixNumber()
		return n, e.counterparties.AddAppendix(ctx, c.ID, models.Appendix{
			Number:         n,
			File:           file,
			CreatedAt:      e.now(),
			ContractNumber: last.Number,
		})
	},
	replaceFile: func(e *Engine, ctx context.Context, id string, n int, file []byte) error {
		return e.counterparties.ReplaceAppendixFile(ctx, id, n, file)
	},
	remove: func(e *Engine, ctx context.Context, id string, n int) error {
		return e.counterparties.DeleteAppendix(ctx, id, n)
	},
}

var itemKinds = []*itemKind{contractKind, appendixKind}

func kindForStep(step models.Step) *itemKind {
	for _, k := range itemKinds {
		if k.uploadStep == step || k.replaceStep == step {
			return k
		}
	}
	return nil
}

// itemArgs parses "<counterparty id>:<number>".
func itemArgs(args []string) (string, int, error) {
	id, err := arg(args, 0)
	if err != nil {
		return "", 0, err
	}
	raw, err := arg(args, 1)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return "", 0, failWith("Некорректные данные кнопки.", fmt.Errorf("bad item number %q", raw))
	}
	return id, n, nil
}

func listItems(k *itemKind) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, err := arg(args, 0)
		if err != nil {
			return err
		}
		c, err := e.counterparties.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Контрагент не найден.", "Не удалось загрузить контрагента.")
		}
		numbers := k.numbers(c)
		kb := messenger.Keyboard{}
		for _, n := range numbers {
			label := fmt.Sprintf(k.labelFmt, n)
			kb = append(kb, messenger.Row(messenger.DataButton(label, menu.Data(k.sel, id, strconv.Itoa(n)))))
		}
		kb = append(kb,
			messenger.Row(messenger.DataButton(k.uploadLabel, menu.Data(k.upload, id))),
			messenger.Row(messenger.DataButton("В главное меню", menu.MainMenu)),
		)
		text := k.chooseText
		if len(numbers) == 0 {
			text = k.emptyText
		}
		_, err = e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: text, Keyboard: kb})
		return err
	}
}

func selectItem(k *itemKind) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, n, err := itemArgs(args)
		if err != nil {
			return err
		}
		num := strconv.Itoa(n)
		_, err = e.msg.Send(ctx, messenger.Message{
			ChatID: ev.ChatID,
			Text:   fmt.Sprintf(k.labelFmt+". Выберите действие:", n),
			Keyboard: messenger.Keyboard{
				messenger.Row(messenger.DataButton("Заменить", menu.Data(k.replace, id, num))),
				messenger.Row(messenger.DataButton("Скачать", menu.Data(k.download, id, num))),
				messenger.Row(messenger.DataButton("Удалить", menu.Data(k.del, id, num))),
				messenger.Row(messenger.DataButton("Назад", menu.Data(k.list, id))),
			},
		})
		return err
	}
}

func downloadItem(k *itemKind) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, n, err := itemArgs(args)
		if err != nil {
			return err
		}
		c, err := e.counterparties.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Контрагент не найден.", "Не удалось загрузить контрагента.")
		}
		file, ok := k.file(c, n)
		if !ok {
			e.say(ctx, ev.ChatID, k.notFound)
			return nil
		}
		return e.msg.SendDocument(ctx, ev.ChatID, fmt.Sprintf("%s%d.docx", k.filePrefix, n), file)
	}
}

func deleteItem(k *itemKind) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, n, err := itemArgs(args)
		if err != nil {
			return err
		}
		if err := k.remove(e, ctx, id, n); err != nil {
			return orNotFound(err, k.notFound, "Ошибка при удалении.")
		}
		e.say(ctx, ev.ChatID, fmt.Sprintf(k.deletedFmt, n))
		return nil
	}
}

func startItemReplace(k *itemKind) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, n, err := itemArgs(args)
		if err != nil {
			return err
		}
		return e.begin(ctx, ev.ChatID, &models.Session{Step: k.replaceStep, CounterpartyID: id, ItemNumber: n})
	}
}

func startItemUpload(k *itemKind) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, err := arg(args, 0)
		if err != nil {
			return err
		}
		return e.begin(ctx, ev.ChatID, &models.Session{Step: k.uploadStep, CounterpartyID: id})
	}
}

// itemUpload stores a user-supplied file under the next number.
func itemUpload(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	k := kindForStep(s.Step)
	if ev.Kind != KindDocument || ev.File == nil {
		return resultStay, invalid("")
	}
	data, err := e.download(ctx, ev.File)
	if err != nil {
		return resultDone, failWith("Ошибка при загрузке файла.", err)
	}
	_, n, err := e.nextNumbered(ctx, s.CounterpartyID, func(c *models.Counterparty) (int, error) {
		return k.add(e, ctx, c, data)
	})
	if errors.Is(err, counterpartyRepo.ErrNoContract) {
		return resultDone, failWith(noContractText, err)
	}
	if err != nil {
		return resultDone, orNotFound(err, "Контрагент не найден.", "Ошибка при загрузке файла.")
	}
	e.say(ctx, ev.ChatID, fmt.Sprintf(k.uploadedFmt, n))
	return resultDone, nil
}

// itemReplace swaps the file of an existing item.
func itemReplace(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	k := kindForStep(s.Step)
	if ev.Kind != KindDocument || ev.File == nil {
		return resultStay, invalid("")
	}
	data, err := e.download(ctx, ev.File)
	if err != nil {
		return resultDone, failWith("Ошибка при загрузке файла.", err)
	}
	if err := k.replaceFile(e, ctx, s.CounterpartyID, s.ItemNumber, data); err != nil {
		return resultDone, orNotFound(err, k.notFound, "Ошибка при замене файла.")
	}
	e.say(ctx, ev.ChatID, fmt.Sprintf(k.replacedFmt, s.ItemNumber))
	return resultDone, nil
}

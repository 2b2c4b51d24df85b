package conversation

import (
	"context"
	"errors"
	"fmt"

	"qartelbot/models"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"

	"go.uber.org/zap"
)

type callbackFunc func(e *Engine, ctx context.Context, ev Event, role models.Role, args []string) error

var callbackHandlers map[string]callbackFunc

func init() {
	callbackHandlers = map[string]callbackFunc{
		menu.MainMenu:     showMainMenu,
		menu.About:        showAbout,
		menu.Contacts:     showContacts,
		menu.Presentation: sendAsset(func(s Settings) string { return s.PresentationURL }, "idea Qartel.pdf", "Не удалось скачать презентацию."),
		menu.Relay:        startRelay,

		menu.Projects:      listProjects,
		menu.ProjectView:   viewProject,
		menu.ProjectDelete: deleteProject,
		menu.ProjectNew:    startProject,

		menu.CardPrimary:   sendAsset(func(s Settings) string { return s.CardPrimaryURL }, "Карточка_ИП_Киреичев.pdf", "Не удалось скачать карточку ИП Киреичев."),
		menu.CardSecondary: sendAsset(func(s Settings) string { return s.CardSecondaryURL }, "Карточка_ИП_Фадеев.pdf", "Не удалось скачать карточку ИП Фадеев."),

		menu.TrustMenu:     showTrustMenu,
		menu.TrustNew:      startTrust,
		menu.TrustList:     listTrusts,
		menu.TrustDownload: downloadTrust,

		menu.WaybillNew:   startWaybill,
		menu.ExpenseStart: startExpense,

		menu.Counterparties:   listCounterparties,
		menu.CounterpartyNew:  startCounterparty,
		menu.CounterpartyView: viewCounterparty,
		menu.ContractNew:      createContract,
		menu.AppendixNew:      startAppendix,

		menu.Managers:       listManagers,
		menu.ManagerPromote: setRole(models.RoleManager),
		menu.ManagerDemote:  setRole(models.RoleVisitor),
	}
	for _, k := range itemKinds {
		callbackHandlers[k.list] = listItems(k)
		callbackHandlers[k.sel] = selectItem(k)
		callbackHandlers[k.download] = downloadItem(k)
		callbackHandlers[k.del] = deleteItem(k)
		callbackHandlers[k.replace] = startItemReplace(k)
		callbackHandlers[k.upload] = startItemUpload(k)
	}
}

// arg returns args[i]; malformed callback data is reported to the user.
func arg(args []string, i int) (string, error) {
	if i >= len(args) || args[i] == "" {
		return "", failWith("Некорректные данные кнопки.", fmt.Errorf("missing callback argument %d", i))
	}
	return args[i], nil
}

func showMainMenu(e *Engine, ctx context.Context, ev Event, role models.Role, _ []string) error {
	if err := e.sessions.Delete(ctx, ev.ChatID); err != nil {
		return err
	}
	_, err := e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: "Главное меню:", Keyboard: menu.Main(role)})
	return err
}

const aboutText = `*idea Qartel* — это команда профессионалов, создающих впечатляющие конструкции и декорации для бизнеса, рекламы и ивентов. Мы воплощаем смелые идеи, превращая пространство в эффектные и запоминающиеся локации.

🔹 Временные рекламные стенды
🔹 Оформление мероприятий
🔹 Нестандартные пространственные решения
🔹 Любые креативные задумки – от концепции до монтажа

🎯 Преимущества:

✅ Полный цикл производства – от идеи до монтажа.
✅ Собственное производство в Москве (Мытищи) с ЧПУ, сварочным и покрасочным цехами.
✅ Качественные материалы и передовые технологии – гарантия надежности.
✅ Быстрая реализация проектов и гибкость под любой бюджет.
✅ Работаем с крупнейшими ивент-агентствами и брендами.

💡 Мы создаем проекты, которые невозможно забыть!
Готовы воплотить вашу идею в жизнь? Свяжитесь с нами прямо сейчас!`

func showAbout(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	_, err := e.msg.Send(ctx, messenger.Message{
		ChatID:   ev.ChatID,
		Text:     aboutText,
		Markdown: true,
		Keyboard: messenger.Keyboard{
			messenger.Row(messenger.DataButton("Контакты", menu.Contacts)),
			messenger.Row(messenger.DataButton("В главное меню", menu.MainMenu)),
		},
	})
	return err
}

func showContacts(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	_, err := e.msg.Send(ctx, messenger.Message{
		ChatID:   ev.ChatID,
		Text:     "📞 *Свяжитесь с нами напрямую*\n или напишите сообщение прямо сюда:",
		Markdown: true,
		Keyboard: messenger.Keyboard{
			messenger.Row(messenger.URLButton("📞 Артем Киреичев: +7 (926) 079-53-62", "tg://resolve?phone=79260795362")),
			messenger.Row(messenger.URLButton("📞 Александр Фадеев: +7 (916) 176-26-97", "tg://resolve?phone=79161762697")),
			messenger.Row(messenger.DataButton("✉️ Написать сообщение", menu.Relay)),
			messenger.Row(messenger.DataButton("В главное меню", menu.MainMenu)),
		},
	})
	return err
}

// sendAsset downloads a static file and sends it as a document.
func sendAsset(url func(Settings) string, name, failure string) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
		src := url(e.settings)
		if src == "" {
			return failWith(failure, errors.New("asset url is not configured"))
		}
		data, err := e.fetcher.Fetch(ctx, src)
		if err != nil {
			return failWith(failure, err)
		}
		return e.msg.SendDocument(ctx, ev.ChatID, name, data)
	}
}

func listManagers(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	users, err := e.users.ListByRoles(ctx, models.RoleVisitor, models.RoleManager)
	if err != nil {
		return failWith("Не удалось получить список пользователей.", err)
	}
	if len(users) == 0 {
		e.say(ctx, ev.ChatID, "Нет пользователей для управления.")
		return nil
	}
	kb := messenger.Keyboard{}
	for _, u := range users {
		kb = append(kb, messenger.Row(
			messenger.DataButton(fmt.Sprintf("Назначить менеджером (%s)", u.ID), menu.Data(menu.ManagerPromote, u.ID)),
			messenger.DataButton(fmt.Sprintf("Уволить (%s)", u.ID), menu.Data(menu.ManagerDemote, u.ID)),
		))
	}
	kb = append(kb, menu.BackToMain()...)
	_, err = e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: "Выберите пользователя для управления:", Keyboard: kb})
	return err
}

// setRole changes another user's role. Admins cannot be changed from the bot.
func setRole(role models.Role) callbackFunc {
	return func(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
		id, err := arg(args, 0)
		if err != nil {
			return err
		}
		target, err := e.users.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Пользователь не найден.", "Не удалось изменить роль.")
		}
		if target.Role == models.RoleAdmin {
			e.say(ctx, ev.ChatID, "Роль администратора нельзя изменить.")
			return nil
		}
		if err := e.users.SetRole(ctx, id, role); err != nil {
			return orNotFound(err, "Пользователь не найден.", "Не удалось изменить роль.")
		}
		e.logger.Info("role changed",
			zap.String("user_id", id),
			zap.String("role", string(role)),
			zap.Int64("by", ev.userID()),
		)
		if role == models.RoleManager {
			e.say(ctx, ev.ChatID, fmt.Sprintf("Пользователь %s назначен менеджером.", id))
		} else {
			e.say(ctx, ev.ChatID, fmt.Sprintf("Пользователь %s теперь имеет роль посетителя.", id))
		}
		return nil
	}
}

func startRelay(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	return e.begin(ctx, ev.ChatID, &models.Session{Step: models.StepRelayMessage})
}

func relayMessage(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	if _, ok := ev.text(); !ok {
		return resultStay, invalid("Пожалуйста, напишите текстовое сообщение.")
	}
	if e.settings.GroupChatID == 0 {
		return resultDone, failWith("Произошла ошибка при отправке сообщения. Пожалуйста, попробуйте позже.", errors.New("group chat is not configured"))
	}
	if err := e.msg.Forward(ctx, e.settings.GroupChatID, ev.ChatID, ev.MessageID); err != nil {
		return resultDone, failWith("Произошла ошибка при отправке сообщения. Пожалуйста, попробуйте позже.", err)
	}
	e.say(ctx, ev.ChatID, "Ваше сообщение успешно отправлено нашей команде! 🚀")
	return resultDone, nil
}

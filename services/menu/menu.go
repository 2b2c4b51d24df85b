// Package menu composes role-dependent keyboards and maps callback data to
// the minimal role allowed to trigger it.
package menu

import (
	"strings"

	"qartelbot/models"
	"qartelbot/services/messenger"
)

// Callback data of the top-level menu items.
const (
	MainMenu     = "main_menu"
	Projects     = "projects"
	About        = "about"
	Contacts     = "contacts"
	Presentation = "presentation"
	Relay        = "relay"

	ExpenseStart    = "exp:start"
	Counterparties  = "cp:list"
	CounterpartyNew = "cp:new"
	ProjectNew      = "prj:new"
	WaybillNew      = "wb:new"
	CardPrimary     = "card:1"
	CardSecondary   = "card:2"
	TrustMenu       = "trust:menu"

	Managers = "mgr:list"
)

// Prefixes of parameterised callbacks. Arguments follow, separated by ":".
const (
	ProjectView   = "prj:view"
	ProjectDelete = "prj:del"

	TrustNew      = "trust:new"
	TrustList     = "trust:list"
	TrustDownload = "trust:dl"

	CounterpartyView = "cp:view"

	ContractNew      = "ct:new"
	ContractList     = "ct:list"
	ContractSelect   = "ct:sel"
	ContractDownload = "ct:dl"
	ContractReplace  = "ct:rep"
	ContractDelete   = "ct:del"
	ContractUpload   = "ct:up"

	AppendixNew      = "ap:new"
	AppendixList     = "ap:list"
	AppendixSelect   = "ap:sel"
	AppendixDownload = "ap:dl"
	AppendixReplace  = "ap:rep"
	AppendixDelete   = "ap:del"
	AppendixUpload   = "ap:up"

	ExpensePage        = "exp:page"
	ExpenseSheet       = "exp:sheet"
	ExpenseContributor = "exp:who"

	WaybillSender   = "wb:sender"
	WaybillReceiver = "wb:recv"

	ManagerPromote = "mgr:promote"
	ManagerDemote  = "mgr:demote"
)

// Data joins an action and its arguments into callback data.
func Data(action string, args ...string) string {
	if len(args) == 0 {
		return action
	}
	return action + ":" + strings.Join(args, ":")
}

// Split separates callback data into a two-segment action and its arguments.
// "ct:sel:abc:2" yields ("ct:sel", ["abc", "2"]); "main_menu" yields ("main_menu", nil).
func Split(data string) (action string, args []string) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return data, nil
	}
	return parts[0] + ":" + parts[1], parts[2:]
}

// requirements is ordered most specific first.
var requirements = []struct {
	prefix string
	role   models.Role
}{
	{ProjectDelete, models.RoleAdmin},
	{"mgr:", models.RoleAdmin},
	{ProjectView, models.RoleVisitor},
	{"prj:", models.RoleManager},
	{"exp:", models.RoleManager},
	{"cp:", models.RoleManager},
	{"ct:", models.RoleManager},
	{"ap:", models.RoleManager},
	{"wb:", models.RoleManager},
	{"card:", models.RoleManager},
	{"trust:", models.RoleManager},
}

// Required returns the lowest role allowed to trigger callback data.
func Required(data string) models.Role {
	for _, r := range requirements {
		if strings.HasPrefix(data, r.prefix) {
			return r.role
		}
	}
	return models.RoleVisitor
}

// Allowed reports whether role may trigger data.
func Allowed(role models.Role, data string) bool {
	return role.AtLeast(Required(data))
}

// Main builds the main menu. Items are additive up the role ladder.
func Main(role models.Role) messenger.Keyboard {
	kb := messenger.Keyboard{
		messenger.Row(messenger.DataButton("Кейсы проектов", Projects)),
		messenger.Row(messenger.DataButton("О нас", About)),
		messenger.Row(messenger.DataButton("Связаться с нами", Contacts)),
		messenger.Row(messenger.DataButton("Скачать Презентацию (PDF)", Presentation)),
	}
	if role.AtLeast(models.RoleManager) {
		kb = append(kb,
			messenger.Row(messenger.DataButton("💰 Внести расход", ExpenseStart)),
			messenger.Row(messenger.DataButton("📋 Список контрагентов", Counterparties)),
			messenger.Row(messenger.DataButton("➕ Добавить контрагента", CounterpartyNew)),
			messenger.Row(messenger.DataButton("➕ Загрузить проект", ProjectNew)),
			messenger.Row(messenger.DataButton("🚚 Создать ТН", WaybillNew)),
			messenger.Row(messenger.DataButton("📄 Карточка ИП Киреичев", CardPrimary)),
			messenger.Row(messenger.DataButton("📄 Карточка ИП Фадеев", CardSecondary)),
			messenger.Row(messenger.DataButton("📝 Доверенность Киреичев", TrustMenu)),
		)
	}
	if role.AtLeast(models.RoleAdmin) {
		kb = append(kb, messenger.Row(messenger.DataButton("⚙️ Управление менеджерами", Managers)))
	}
	return kb
}

// BackToMain is the single-button keyboard returning to the main menu.
func BackToMain() messenger.Keyboard {
	return messenger.Keyboard{messenger.Row(messenger.DataButton("В главное меню", MainMenu))}
}

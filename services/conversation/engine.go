// Package conversation routes chat events through per-chat wizards.
//
// Every event for a chat runs under that chat's lock, so the session
// read-modify-write never interleaves. Handlers validate input before
// touching the session; a rejected input is never persisted.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"qartelbot/database"
	"qartelbot/database/repository"
	"qartelbot/models"
	"qartelbot/services/document"
	"qartelbot/services/expense"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"
	"qartelbot/services/session"

	"go.uber.org/zap"
)

// Fetcher downloads bytes by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Renderer fills a document template.
type Renderer interface {
	Render(ctx context.Context, tpl document.Template, data map[string]string) ([]byte, error)
}

// ExpenseService records expenses in the remote spreadsheet.
type ExpenseService interface {
	Sheets(ctx context.Context) ([]string, error)
	AddExpense(ctx context.Context, e expense.Expense) error
}

// Uploader stores project assets and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, source, folder, resourceType string) (string, error)
}

// AssetPurger removes a deleted project's stored assets.
type AssetPurger interface {
	PurgeProjectAssets(ctx context.Context, projectID, prefix string) error
}

// Deps are the collaborators of the engine.
type Deps struct {
	Messenger      messenger.MessengerService
	Users          repository.UserRepository
	Counterparties repository.CounterpartyRepository
	Trusts         repository.TrustRepository
	Projects       repository.ProjectRepository
	Renderer       Renderer
	Fetcher        Fetcher
	Expenses       ExpenseService
	Storage        Uploader
	Purger         AssetPurger
	Sessions       session.Store
}

// Settings are the deployment-specific values the wizards use.
type Settings struct {
	// NotifyChatID receives a note when someone presses /start. Zero disables it.
	NotifyChatID int64
	// GroupChatID receives relayed visitor messages.
	GroupChatID int64

	ReservedSheets []string
	PersonalSheet  string
	Contributors   []string

	PresentationURL  string
	CardPrimaryURL   string
	CardSecondaryURL string
}

// Engine dispatches events to menus and wizard steps.
type Engine struct {
	msg            messenger.MessengerService
	users          repository.UserRepository
	counterparties repository.CounterpartyRepository
	trusts         repository.TrustRepository
	projects       repository.ProjectRepository
	renderer       Renderer
	fetcher        Fetcher
	expenses       ExpenseService
	storage        Uploader
	purger         AssetPurger
	sessions       session.Store

	settings Settings
	locks    *session.KeyedMutex
	logger   *zap.Logger
	now      func() time.Time

	notifiedMu sync.Mutex
	notified   map[int64]struct{}
}

func NewEngine(deps Deps, settings Settings, logger *zap.Logger) (*Engine, error) {
	if deps.Messenger == nil || deps.Users == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("conversation engine initialization error: messenger, users and sessions are required")
	}
	return &Engine{
		msg:            deps.Messenger,
		users:          deps.Users,
		counterparties: deps.Counterparties,
		trusts:         deps.Trusts,
		projects:       deps.Projects,
		renderer:       deps.Renderer,
		fetcher:        deps.Fetcher,
		expenses:       deps.Expenses,
		storage:        deps.Storage,
		purger:         deps.Purger,
		sessions:       deps.Sessions,
		settings:       settings,
		locks:          session.NewKeyedMutex(),
		logger:         logger,
		now:            time.Now,
		notified:       make(map[int64]struct{}),
	}, nil
}

// HandleEvent processes one event. Events of the same chat are serialized;
// a panic is contained to the event that caused it.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) (err error) {
	unlock := e.locks.Lock(ev.ChatID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while handling event",
				zap.Int64("chat_id", ev.ChatID),
				zap.String("kind", ev.Kind.String()),
				zap.Any("panic", r),
			)
			if delErr := e.sessions.Delete(ctx, ev.ChatID); delErr != nil {
				e.logger.Warn("failed to clear session after panic", zap.Int64("chat_id", ev.ChatID), zap.Error(delErr))
			}
			e.say(ctx, ev.ChatID, genericFailure)
			err = fmt.Errorf("conversation: panic: %v", r)
		}
	}()

	switch {
	case ev.isCommand("/start"):
		return e.handleStart(ctx, ev)
	case ev.Kind == KindCallback:
		return e.handleCallback(ctx, ev)
	default:
		return e.handleInput(ctx, ev)
	}
}

const welcomeText = "🔥 *idea Qartel - ваш надежный партнер в мире прочных решений и впечатляющих конструкций. Добро пожаловать.* 🔥"

func (e *Engine) handleStart(ctx context.Context, ev Event) error {
	role := models.RoleVisitor
	user, created, err := e.users.EnsureUser(ctx, strconv.FormatInt(ev.userID(), 10))
	if err != nil {
		e.logger.Error("failed to ensure user", zap.Int64("user_id", ev.userID()), zap.Error(err))
	} else {
		role = user.Role
		if created {
			e.logger.Info("new user registered", zap.Int64("user_id", ev.userID()))
		}
	}
	e.notifyStart(ctx, ev)

	if err := e.sessions.Delete(ctx, ev.ChatID); err != nil {
		return fmt.Errorf("conversation: clear session: %w", err)
	}
	_, err = e.msg.Send(ctx, messenger.Message{
		ChatID:   ev.ChatID,
		Text:     welcomeText,
		Markdown: true,
		Keyboard: menu.Main(role),
	})
	return err
}

// notifyStart tells the notify chat about a user once per process.
func (e *Engine) notifyStart(ctx context.Context, ev Event) {
	if e.settings.NotifyChatID == 0 {
		return
	}
	e.notifiedMu.Lock()
	_, seen := e.notified[ev.userID()]
	e.notified[ev.userID()] = struct{}{}
	e.notifiedMu.Unlock()
	if seen {
		return
	}

	who := ev.FirstName
	if ev.Username != "" {
		who = "@" + ev.Username
	}
	text := fmt.Sprintf("%s нажал(а) /start. ID: %d", who, ev.userID())
	if _, err := e.msg.Send(ctx, messenger.Message{ChatID: e.settings.NotifyChatID, Text: text}); err != nil {
		e.logger.Warn("failed to send start notification", zap.Error(err))
	}
}

// roleOf re-reads the sender's role. Unknown users are visitors.
func (e *Engine) roleOf(ctx context.Context, ev Event) (models.Role, error) {
	user, err := e.users.GetByID(ctx, strconv.FormatInt(ev.userID(), 10))
	if errors.Is(err, database.ErrNotFound) {
		return models.RoleVisitor, nil
	}
	if err != nil {
		return "", fmt.Errorf("conversation: load role: %w", err)
	}
	return user.Role, nil
}

func (e *Engine) handleCallback(ctx context.Context, ev Event) error {
	if err := e.msg.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
		e.logger.Warn("failed to answer callback", zap.Int64("chat_id", ev.ChatID), zap.Error(err))
	}

	role, err := e.roleOf(ctx, ev)
	if err != nil {
		return err
	}
	if !menu.Allowed(role, ev.Data) {
		e.logger.Debug("callback not allowed",
			zap.Int64("chat_id", ev.ChatID),
			zap.String("data", ev.Data),
			zap.String("role", string(role)),
		)
		return nil
	}

	action, args := menu.Split(ev.Data)
	if stepCallbacks[action] {
		return e.handleInput(ctx, ev)
	}
	handler, ok := callbackHandlers[action]
	if !ok {
		e.logger.Debug("unknown callback", zap.String("data", ev.Data))
		return nil
	}
	if err := handler(e, ctx, ev, role, args); err != nil {
		e.logger.Error("callback failed",
			zap.Int64("chat_id", ev.ChatID),
			zap.String("data", ev.Data),
			zap.Error(err),
		)
		e.say(ctx, ev.ChatID, userMessage(err))
	}
	return nil
}

func (e *Engine) handleInput(ctx context.Context, ev Event) error {
	s, ok, err := e.sessions.Get(ctx, ev.ChatID)
	if err != nil {
		return fmt.Errorf("conversation: load session: %w", err)
	}
	if !ok || s.Step == models.StepNone {
		return nil
	}

	role, err := e.roleOf(ctx, ev)
	if err != nil {
		return err
	}
	if !role.AtLeast(stepRole(s.Step)) {
		e.logger.Info("dropping wizard after role change",
			zap.Int64("chat_id", ev.ChatID),
			zap.String("step", string(s.Step)),
		)
		return e.sessions.Delete(ctx, ev.ChatID)
	}

	handler, ok := stepHandlers[s.Step]
	if !ok {
		e.logger.Error("no handler for step", zap.String("step", string(s.Step)))
		return e.sessions.Delete(ctx, ev.ChatID)
	}
	res, err := handler(e, ctx, s, ev)
	return e.settle(ctx, ev.ChatID, s, res, err)
}

// settle applies a step outcome: re-prompt on validation errors, report and
// clear on any other error, otherwise persist or clear the session.
func (e *Engine) settle(ctx context.Context, chatID int64, s *models.Session, res result, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Message != "" {
			e.say(ctx, chatID, verr.Message)
			return nil
		}
		return e.prompt(ctx, chatID, s)
	case err != nil:
		e.logger.Error("wizard step failed",
			zap.Int64("chat_id", chatID),
			zap.String("step", string(s.Step)),
			zap.Error(err),
		)
		e.say(ctx, chatID, userMessage(err))
		return e.sessions.Delete(ctx, chatID)
	}

	switch res {
	case resultAdvance:
		if err := e.sessions.Set(ctx, chatID, s); err != nil {
			return fmt.Errorf("conversation: save session: %w", err)
		}
		return e.prompt(ctx, chatID, s)
	case resultDone:
		return e.sessions.Delete(ctx, chatID)
	}
	return nil
}

// begin replaces any wizard of the chat with s and sends its first prompt.
func (e *Engine) begin(ctx context.Context, chatID int64, s *models.Session) error {
	if err := e.sessions.Set(ctx, chatID, s); err != nil {
		return fmt.Errorf("conversation: save session: %w", err)
	}
	return e.prompt(ctx, chatID, s)
}

func (e *Engine) prompt(ctx context.Context, chatID int64, s *models.Session) error {
	msg := e.promptFor(s)
	msg.ChatID = chatID
	_, err := e.msg.Send(ctx, msg)
	return err
}

// say sends plain text; delivery failures are logged only.
func (e *Engine) say(ctx context.Context, chatID int64, text string) {
	e.send(ctx, messenger.Message{ChatID: chatID, Text: text})
}

func (e *Engine) send(ctx context.Context, msg messenger.Message) {
	if _, err := e.msg.Send(ctx, msg); err != nil {
		e.logger.Warn("failed to send message", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}

// download fetches an uploaded file's bytes.
func (e *Engine) download(ctx context.Context, f *File) ([]byte, error) {
	url, err := e.msg.FileURL(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	return e.fetcher.Fetch(ctx, url)
}

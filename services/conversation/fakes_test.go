package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"qartelbot/database"
	counterpartyRepo "qartelbot/database/repository/counterparty"
	trustRepo "qartelbot/database/repository/trust"
	"qartelbot/models"
	"qartelbot/services/document"
	"qartelbot/services/expense"
	"qartelbot/services/messenger"
	"qartelbot/services/session"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sentDocument struct {
	chatID int64
	name   string
	data   []byte
}

type fakeMessenger struct {
	mu        sync.Mutex
	messages  []messenger.Message
	documents []sentDocument
	forwarded []int
	cleared   []int
	photos    [][]string
	sendErr   error
	docErr    error
	answerErr error
}

func (m *fakeMessenger) Send(_ context.Context, msg messenger.Message) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.messages = append(m.messages, msg)
	return len(m.messages), nil
}

func (m *fakeMessenger) SendDocument(_ context.Context, chatID int64, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docErr != nil {
		return m.docErr
	}
	m.documents = append(m.documents, sentDocument{chatID: chatID, name: name, data: data})
	return nil
}

func (m *fakeMessenger) SendPhotos(_ context.Context, _ int64, urls []string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos = append(m.photos, urls)
	return nil
}

func (m *fakeMessenger) ClearButtons(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, messageID)
	return nil
}

func (m *fakeMessenger) Forward(_ context.Context, _, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwarded = append(m.forwarded, messageID)
	return nil
}

func (m *fakeMessenger) FileURL(_ context.Context, fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (m *fakeMessenger) AnswerCallback(context.Context, string, string) error { return m.answerErr }

func (m *fakeMessenger) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1].Text
}

func (m *fakeMessenger) last() messenger.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return messenger.Message{}
	}
	return m.messages[len(m.messages)-1]
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]models.User{}} }

func (u *fakeUsers) put(id int64, role models.Role) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := strconv.FormatInt(id, 10)
	u.users[key] = models.User{ID: key, Role: role}
}

func (u *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &user, nil
}

func (u *fakeUsers) EnsureUser(_ context.Context, id string) (*models.User, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user, ok := u.users[id]; ok {
		return &user, false, nil
	}
	user := models.User{ID: id, Role: models.RoleVisitor}
	u.users[id] = user
	return &user, true, nil
}

func (u *fakeUsers) SetRole(_ context.Context, id string, role models.Role) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.Role = role
	u.users[id] = user
	return nil
}

func (u *fakeUsers) ListByRoles(_ context.Context, roles ...models.Role) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []models.User
	for _, user := range u.users {
		for _, r := range roles {
			if user.Role == r {
				out = append(out, user)
			}
		}
	}
	return out, nil
}

// fakeCounterparties mirrors the guarded pushes of the Mongo repository.
type fakeCounterparties struct {
	mu    sync.Mutex
	items map[string]*models.Counterparty
	seq   int
	// conflicts makes the next n Add calls fail as if a concurrent writer won.
	conflicts int
	getErr    error
}

func newFakeCounterparties() *fakeCounterparties {
	return &fakeCounterparties{items: map[string]*models.Counterparty{}}
}

func (r *fakeCounterparties) Create(_ context.Context, c *models.Counterparty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = fmt.Sprintf("cp-%d", r.seq)
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeCounterparties) GetByID(_ context.Context, id string) (*models.Counterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	cp.Contracts = append([]models.Contract(nil), c.Contracts...)
	cp.Appendices = append([]models.Appendix(nil), c.Appendices...)
	return &cp, nil
}

func (r *fakeCounterparties) List(context.Context) ([]models.Counterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Counterparty, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCounterparties) AddContract(_ context.Context, id string, c models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.items[id]
	if !ok {
		return database.ErrNotFound
	}
	if r.conflicts > 0 {
		r.conflicts--
		cp.Contracts = append(cp.Contracts, models.Contract{Number: c.Number})
		return counterpartyRepo.ErrSequenceConflict
	}
	if _, taken := cp.FindContract(c.Number); taken {
		return counterpartyRepo.ErrSequenceConflict
	}
	cp.Contracts = append(cp.Contracts, c)
	return nil
}

func (r *fakeCounterparties) ReplaceContractFile(_ context.Context, id string, number int, file []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.items[id]
	if !ok {
		return database.ErrNotFound
	}
	for i := range cp.Contracts {
		if cp.Contracts[i].Number == number {
			cp.Contracts[i].File = file
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *fakeCounterparties) DeleteContract(_ context.Context, id string, number int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.items[id]
	if !ok {
		return database.ErrNotFound
	}
	for i := range cp.Contracts {
		if cp.Contracts[i].Number == number {
			cp.Contracts = append(cp.Contracts[:i], cp.Contracts[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *fakeCounterparties) AddAppendix(_ context.Context, id string, a models.Appendix) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.items[id]
	if !ok {
		return database.ErrNotFound
	}
	if len(cp.Contracts) == 0 {
		return counterpartyRepo.ErrNoContract
	}
	if _, taken := cp.FindAppendix(a.Number); taken {
		return counterpartyRepo.ErrSequenceConflict
	}
	cp.Appendices = append(cp.Appendices, a)
	return nil
}

func (r *fakeCounterparties) ReplaceAppendixFile(_ context.Context, id string, number int, file []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.items[id]
	if !ok {
		return database.ErrNotFound
	}
	for i := range cp.Appendices {
		if cp.Appendices[i].Number == number {
			cp.Appendices[i].File = file
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *fakeCounterparties) DeleteAppendix(_ context.Context, id string, number int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.items[id]
	if !ok {
		return database.ErrNotFound
	}
	for i := range cp.Appendices {
		if cp.Appendices[i].Number == number {
			cp.Appendices = append(cp.Appendices[:i], cp.Appendices[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type fakeTrusts struct {
	mu   sync.Mutex
	docs []models.TrustDocument
	// stale makes NextNumber lag behind by one for that many calls.
	stale int
}

func (r *fakeTrusts) NextNumber(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.docs) + 1
	if r.stale > 0 && n > 1 {
		r.stale--
		n--
	}
	return n, nil
}

func (r *fakeTrusts) Create(_ context.Context, doc *models.TrustDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.Number == doc.Number {
			return trustRepo.ErrNumberTaken
		}
	}
	doc.ID = fmt.Sprintf("tr-%d", doc.Number)
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *fakeTrusts) GetByID(_ context.Context, id string) (*models.TrustDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakeTrusts) List(context.Context) ([]models.TrustDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TrustDocument(nil), r.docs...), nil
}

type fakeProjects struct {
	mu    sync.Mutex
	items []models.Project
}

func (r *fakeProjects) Create(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = fmt.Sprintf("prj-%d", len(r.items)+1)
	r.items = append(r.items, *p)
	return nil
}

func (r *fakeProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakeProjects) List(context.Context) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Project(nil), r.items...), nil
}

func (r *fakeProjects) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.items {
		if p.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

// fakeRenderer returns the template name as the document and keeps the fields.
type fakeRenderer struct {
	mu   sync.Mutex
	last map[string]string
	tpl  document.Template
	err  error
}

func (r *fakeRenderer) Render(_ context.Context, tpl document.Template, data map[string]string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.tpl, r.last = tpl, data
	return []byte(tpl), nil
}

type fakeFetcher struct {
	data map[string][]byte
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.data[url]; ok {
		return d, nil
	}
	return []byte("file:" + url), nil
}

type fakeExpenses struct {
	sheets []string
	added  []expense.Expense
	err    error
}

func (f *fakeExpenses) Sheets(context.Context) ([]string, error) { return f.sheets, nil }

func (f *fakeExpenses) AddExpense(_ context.Context, e expense.Expense) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, e)
	return nil
}

type fakeStorage struct {
	uploads []string
}

func (s *fakeStorage) Upload(_ context.Context, source, folder, _ string) (string, error) {
	s.uploads = append(s.uploads, folder)
	return fmt.Sprintf("https://cdn.example/%s/%d", folder, len(s.uploads)), nil
}

type fakePurger struct {
	prefixes []string
}

func (p *fakePurger) PurgeProjectAssets(_ context.Context, _, prefix string) error {
	p.prefixes = append(p.prefixes, prefix)
	return nil
}

var errBoom = errors.New("boom")

type harness struct {
	engine   *Engine
	msg      *fakeMessenger
	users    *fakeUsers
	cps      *fakeCounterparties
	trusts   *fakeTrusts
	projects *fakeProjects
	renderer *fakeRenderer
	fetcher  *fakeFetcher
	expenses *fakeExpenses
	storage  *fakeStorage
	purger   *fakePurger
	sessions *session.MemoryStore
	logs     *observer.ObservedLogs
}

const (
	testChat int64 = 100
	fixedNow       = "2025-03-14T10:00:00Z"
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		msg:      &fakeMessenger{},
		users:    newFakeUsers(),
		cps:      newFakeCounterparties(),
		trusts:   &fakeTrusts{},
		projects: &fakeProjects{},
		renderer: &fakeRenderer{},
		fetcher:  &fakeFetcher{data: map[string][]byte{}},
		expenses: &fakeExpenses{},
		storage:  &fakeStorage{},
		purger:   &fakePurger{},
		sessions: session.NewMemoryStore(),
	}
	core, logs := observer.New(zap.DebugLevel)
	h.logs = logs
	e, err := NewEngine(Deps{
		Messenger:      h.msg,
		Users:          h.users,
		Counterparties: h.cps,
		Trusts:         h.trusts,
		Projects:       h.projects,
		Renderer:       h.renderer,
		Fetcher:        h.fetcher,
		Expenses:       h.expenses,
		Storage:        h.storage,
		Purger:         h.purger,
		Sessions:       h.sessions,
	}, Settings{
		GroupChatID:   -500,
		PersonalSheet: "Личные",
		Contributors:  []string{"Артем", "Александр"},
	}, zap.New(core))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	now, _ := time.Parse(time.RFC3339, fixedNow)
	e.now = func() time.Time { return now }
	h.engine = e
	h.users.put(testChat, models.RoleManager)
	return h
}

func (h *harness) text(t *testing.T, text string) {
	t.Helper()
	h.event(t, Event{ChatID: testChat, Kind: KindText, Text: text})
}

func (h *harness) click(t *testing.T, data string) {
	t.Helper()
	h.event(t, Event{ChatID: testChat, Kind: KindCallback, Data: data, MessageID: 7})
}

func (h *harness) upload(t *testing.T, fileID, mime string) {
	t.Helper()
	h.event(t, Event{ChatID: testChat, Kind: KindDocument, File: &File{ID: fileID, Name: fileID, MIME: mime}})
}

func (h *harness) event(t *testing.T, ev Event) {
	t.Helper()
	if err := h.engine.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent(%+v): %v", ev, err)
	}
}

func (h *harness) session(t *testing.T) (*models.Session, bool) {
	t.Helper()
	s, ok, err := h.sessions.Get(context.Background(), testChat)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	return s, ok
}

// seedCounterparty stores a counterparty with the given contract numbers.
func (h *harness) seedCounterparty(t *testing.T, contracts ...int) *models.Counterparty {
	t.Helper()
	c := models.NewCounterparty()
	c.Name = "ООО Ромашка"
	c.TaxID = "7701234567/770101001"
	for _, n := range contracts {
		c.Contracts = append(c.Contracts, models.Contract{Number: n, File: []byte("contract"), CreatedAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)})
	}
	if err := h.cps.Create(context.Background(), &c); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &c
}

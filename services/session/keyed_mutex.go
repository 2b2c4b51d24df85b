package session

import "sync"

// KeyedMutex serializes work per chat id. Entries are dropped once no
// goroutine holds or waits on them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*refLock)}
}

// Lock blocks until chatID is free and returns its unlock function.
func (k *KeyedMutex) Lock(chatID int64) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[chatID]
	if !ok {
		l = &refLock{}
		k.locks[chatID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			k.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(k.locks, chatID)
			}
			k.mu.Unlock()
		})
	}
}

// Len reports how many chat ids currently have holders or waiters.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

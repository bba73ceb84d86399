package contextstore

import (
	"OllamaChat/internal/ai"
	"sync"
)

// Store — единственный на процесс слот с последним токеном контекста.
//
// Read и Write по отдельности атомарны, но между ними блокировки нет: два параллельных
// запроса читают один и тот же токен, а в слоте остаётся тот, кто записал последним.
type Store struct {
	mu    sync.RWMutex
	token ai.ContextToken
}

func New() *Store {
	return &Store{token: ai.ContextToken{}}
}

// Read возвращает копию текущего токена.
func (s *Store) Read() ai.ContextToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Clone()
}

// Write целиком заменяет токен.
func (s *Store) Write(token ai.ContextToken) {
	t := token.Clone()
	s.mu.Lock()
	s.token = t
	s.mu.Unlock()
}

// Reset возвращает слот к пустому токену.
func (s *Store) Reset() {
	s.Write(nil)
}

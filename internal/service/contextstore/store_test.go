package contextstore

import (
	"OllamaChat/internal/ai"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_StartsEmpty(t *testing.T) {
	s := New()
	got := s.Read()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_WriteReplacesWholesale(t *testing.T) {
	s := New()
	s.Write(ai.ContextToken{1, 2, 3})
	s.Write(ai.ContextToken{7})
	assert.Equal(t, ai.ContextToken{7}, s.Read())

	s.Reset()
	assert.Empty(t, s.Read())
}

func TestStore_CopiesInAndOut(t *testing.T) {
	s := New()
	in := ai.ContextToken{1, 2, 3}
	s.Write(in)
	in[0] = 100

	out := s.Read()
	out[1] = 200

	assert.Equal(t, ai.ContextToken{1, 2, 3}, s.Read())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Write(ai.ContextToken{i, i, i})
		}()
		go func() {
			defer wg.Done()
			tok := s.Read()
			// никаких «рваных» записей: либо пусто, либо три одинаковых числа
			if len(tok) > 0 {
				assert.Len(t, tok, 3)
				assert.Equal(t, tok[0], tok[2])
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.Read(), 3)
}

package prompts

import "sync"

// MemoryStore хранит рабочее пространство в памяти процесса.
type MemoryStore struct {
	mu sync.Mutex
	ws *Workspace
}

// NewMemoryStore создаёт хранилище с начальным состоянием; nil - встроенные промпты.
func NewMemoryStore(ws *Workspace) *MemoryStore {
	if ws != nil {
		ws = ws.Clone()
	}
	return &MemoryStore{ws: ws}
}

func (s *MemoryStore) Load() (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ws == nil {
		return DefaultWorkspace(), nil
	}
	return s.ws.Clone(), nil
}

func (s *MemoryStore) Save(ws *Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ws = ws.Clone()
	return nil
}

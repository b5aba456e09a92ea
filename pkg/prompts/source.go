package prompts

// Store - порт хранения рабочего пространства.
//
// Реализации: FileStore (YAML на диске), MemoryStore (тесты, HTTP сервер).
// pkg/prompts не импортирует internal/.
type Store interface {
	// Load возвращает сохранённое состояние; если сохранения нет,
	// возвращает DefaultWorkspace.
	Load() (*Workspace, error)

	// Save сохраняет состояние целиком.
	Save(ws *Workspace) error
}

// Общие типы для пакета app
package app

// CommandResultMsg - сообщение, которое возвращает команда после выполнения
type CommandResultMsg struct {
	Output string
	Err    error

	// Changed - команда изменила библиотеку, UI должен перечитать промпт
	Changed bool
}

// Базовые типы - единый язык общения с моделями.
package llm

import (
	"encoding/json"
	"errors"
)

// Request - однократный запрос к модели.
type Request struct {
	Model        string  // id модели в API провайдера
	Instructions string  // системные инструкции, пусто если не заданы
	Input        string  // текст промпта после подстановки переменных
	JSONOutput   bool    // просить у модели JSON-объект
	Temperature  float64 // 0 - значение провайдера по умолчанию
	MaxTokens    int     // 0 - значение провайдера по умолчанию
}

// Response - ответ модели.
type Response struct {
	Output string          // текст ответа
	Raw    json.RawMessage // полный ответ провайдера, сохраняется в историю
}

// ErrEmptyOutput возвращается, когда провайдер ответил без текста.
var ErrEmptyOutput = errors.New("no output received from model")

package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// DisplayKind определяет, как front-end должен показать ответ модели.
type DisplayKind string

const (
	KindPlain     DisplayKind = "plain"
	KindJSON      DisplayKind = "json"
	KindJSONError DisplayKind = "json-error"
)

// DisplayResult - результат решения о форматировании.
//
// Для KindPlain и KindJSON заполнено Value.
// Для KindJSONError заполнены Raw (исходный текст без изменений) и Message.
type DisplayResult struct {
	Kind    DisplayKind `json:"kind"`
	Value   string      `json:"value,omitempty"`
	Raw     string      `json:"raw,omitempty"`
	Message string      `json:"message,omitempty"`
}

// jsonIndent - отступ канонического pretty-print.
const jsonIndent = "  "

// FormatOutput решает, как показывать ответ модели.
//
// Если expectJSON == false, текст возвращается как есть (front-end рендерит его
// как markdown). Иначе ответ разбирается как JSON и печатается с отступом в два
// пробела с сохранением порядка ключей. При ошибке разбора исходный текст
// возвращается вместе с сообщением об ошибке: front-end обязан показать оба.
//
// Пустой ответ - состояние "нет вывода" на стороне вызывающего кода,
// FormatOutput для него не вызывается.
func FormatOutput(raw string, expectJSON bool) DisplayResult {
	if !expectJSON {
		return DisplayResult{Kind: KindPlain, Value: raw}
	}

	pretty, err := prettyJSON(raw)
	if err != nil {
		return DisplayResult{
			Kind:    KindJSONError,
			Raw:     raw,
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}
	}

	return DisplayResult{Kind: KindJSON, Value: pretty}
}

// IsError сообщает, что ответ ожидался в JSON, но не разобрался.
func (r DisplayResult) IsError() bool {
	return r.Kind == KindJSONError
}

// Text возвращает текст для показа: Value, а для ошибки - исходный Raw.
func (r DisplayResult) Text() string {
	if r.Kind == KindJSONError {
		return r.Raw
	}
	return r.Value
}

// prettyJSON переформатирует JSON без промежуточного декодирования в map,
// поэтому порядок ключей и литералы чисел сохраняются как в ответе.
// Повторяющиеся ключи схлопываются: остаётся позиция первого вхождения
// и значение последнего.
func prettyJSON(raw string) (string, error) {
	// 1. Валидация и удаление пробелов
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(raw)); err != nil {
		return "", err
	}

	// 2. Схлопывание повторяющихся ключей
	var deduped bytes.Buffer
	writeDeduped(&deduped, gjson.ParseBytes(compact.Bytes()))

	// 3. Отступы
	var out bytes.Buffer
	if err := json.Indent(&out, deduped.Bytes(), "", jsonIndent); err != nil {
		return "", err
	}

	return out.String(), nil
}

// member - поле объекта: исходный ключ в кавычках и значение.
type member struct {
	key   string
	value gjson.Result
}

func writeDeduped(buf *bytes.Buffer, v gjson.Result) {
	switch {
	case v.IsObject():
		var members []member
		seen := make(map[string]int)
		v.ForEach(func(key, value gjson.Result) bool {
			if i, ok := seen[key.Str]; ok {
				members[i].value = value
				return true
			}
			seen[key.Str] = len(members)
			members = append(members, member{key: key.Raw, value: value})
			return true
		})

		buf.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(m.key)
			buf.WriteByte(':')
			writeDeduped(buf, m.value)
		}
		buf.WriteByte('}')

	case v.IsArray():
		buf.WriteByte('[')
		first := true
		v.ForEach(func(_, value gjson.Result) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeDeduped(buf, value)
			return true
		})
		buf.WriteByte(']')

	default:
		buf.WriteString(v.Raw)
	}
}

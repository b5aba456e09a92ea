// Package prompt реализует подстановку переменных в шаблоны промптов,
// аннотацию переменных для UI и решение о форматировании ответа модели.
//
// Все функции пакета чистые: не делают I/O, не хранят состояние между вызовами
// и безопасны для конкурентного использования.
package prompt

import (
	"regexp"
	"strings"
)

// Variable - пара имя/значение, подставляемая в шаблон.
type Variable struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// tokenPattern - грамматика плейсхолдера, общая для Interpolate и Annotate.
// Группа 1 - идентификатор без окружающих пробелов.
var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_-]+)\s*\}\}`)

// Interpolate заменяет каждый плейсхолдер {{name}} значением первой переменной
// с точно таким же именем.
//
// Правила:
//   - имя переменной сравнивается как есть (без trim, с учётом регистра);
//   - значение вставляется дословно, без экранирования;
//   - подставленные значения повторно не сканируются;
//   - неразрешённый токен нормализуется до {{name}} (внутренние пробелы убираются).
//
// Функция тотальна: ошибок не бывает.
func Interpolate(template string, vars []Variable) string {
	if !strings.Contains(template, "{{") {
		return template
	}

	matches := tokenPattern.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	last := 0
	for _, m := range matches {
		b.WriteString(template[last:m[0]])

		name := template[m[2]:m[3]]
		if v, ok := lookup(vars, name); ok {
			b.WriteString(v.Value)
		} else {
			b.WriteString("{{")
			b.WriteString(name)
			b.WriteString("}}")
		}

		last = m[1]
	}
	b.WriteString(template[last:])

	return b.String()
}

// Placeholders возвращает уникальные идентификаторы плейсхолдеров
// в порядке первого появления в шаблоне.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]struct{})

	for _, m := range tokenPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}

	return names
}

// SanitizeName удаляет из имени все символы кроме [A-Za-z0-9_-].
//
// Это правило редактора переменных: его применяют front-end'ы при вводе имени.
// Interpolate и Annotate имена не санитизируют.
func SanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if isNameRune(r) {
			return r
		}
		return -1
	}, s)
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// lookup ищет первую переменную с точным совпадением имени.
func lookup(vars []Variable, name string) (Variable, bool) {
	for _, v := range vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

package prompt

import (
	"strconv"
	"strings"
)

// VariableStatus - производный статус переменной для отображения в редакторе.
type VariableStatus struct {
	Name        string // имя после trim
	IsEmpty     bool   // имя пустое
	IsDuplicate bool   // непустое имя встречается в списке больше одного раза
	IsUnused    bool   // непустое имя не встречается в шаблоне
	UsageCount  int    // число плейсхолдеров для имени в шаблоне
}

// Annotate возвращает по одному статусу на каждую переменную, сохраняя порядок
// и количество (дубликаты не схлопываются).
//
// Имена сравниваются после trim, поэтому "foo" и " foo " - дубликаты.
// Пустые имена дубликатами не считаются.
// Использование считается по той же грамматике токенов, что и в Interpolate;
// идентификатор токена сравнивается с именем буквально.
func Annotate(vars []Variable, template string) []VariableStatus {
	statuses := make([]VariableStatus, len(vars))
	if len(vars) == 0 {
		return statuses
	}

	// 1. Частоты имён в списке переменных
	names := make([]string, len(vars))
	occurrences := make(map[string]int, len(vars))
	for i, v := range vars {
		names[i] = strings.TrimSpace(v.Name)
		occurrences[names[i]]++
	}

	// 2. Частоты идентификаторов в шаблоне (непересекающийся проход)
	usage := make(map[string]int)
	for _, m := range tokenPattern.FindAllStringSubmatch(template, -1) {
		usage[m[1]]++
	}

	// 3. Статусы
	for i, name := range names {
		st := VariableStatus{
			Name:    name,
			IsEmpty: name == "",
		}
		if !st.IsEmpty {
			st.UsageCount = usage[name]
			st.IsDuplicate = occurrences[name] > 1
			st.IsUnused = st.UsageCount == 0
		}
		statuses[i] = st
	}

	return statuses
}

// Label возвращает короткую подпись статуса как в строке редактора:
// "used Nx" или "unused"; для пустого имени - пустая строка.
func (s VariableStatus) Label() string {
	if s.IsEmpty {
		return ""
	}
	if s.IsUnused {
		return "unused"
	}
	return "used " + strconv.Itoa(s.UsageCount) + "x"
}

package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// LocalizedText - значение на одном языке (язык задается внешним справочником)
type LocalizedText struct {
	LanguageID uint   `json:"language_id"`
	Value      string `json:"value"`
}

// LocalizedTextList - пользовательский тип для работы с JSONB.
// Хранит список локализованных значений (название, описание, вопрос, правильный ответ).
type LocalizedTextList []LocalizedText

// Scan реализует интерфейс sql.Scanner для LocalizedTextList
// Используется GORM для чтения JSONB данных из базы
func (l *LocalizedTextList) Scan(value interface{}) error {
	if value == nil {
		*l = LocalizedTextList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = LocalizedTextList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для LocalizedTextList
func (l LocalizedTextList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(l)
}

// ValueFor возвращает значение для указанного языка.
// Второй результат false, если для этого языка значения нет.
func (l LocalizedTextList) ValueFor(languageID uint) (string, bool) {
	for _, t := range l {
		if t.LanguageID == languageID {
			return t.Value, true
		}
	}
	return "", false
}

// Contains проверяет, есть ли в списке пара (язык, значение)
func (l LocalizedTextList) Contains(languageID uint, value string) bool {
	for _, t := range l {
		if t.LanguageID == languageID && t.Value == value {
			return true
		}
	}
	return false
}

// Matches проверяет, совпадает ли строка со значением хотя бы одного языка.
// Используется движком оценивания: ответ сравнивается с правильным значением
// любого из языков вопроса.
func (l LocalizedTextList) Matches(value string) bool {
	for _, t := range l {
		if t.Value == value {
			return true
		}
	}
	return false
}

// LocalizedOptions - варианты ответа на одном языке
type LocalizedOptions struct {
	LanguageID uint     `json:"language_id"`
	Values     []string `json:"values"`
}

// LocalizedOptionsList - JSONB список вариантов ответа по языкам
type LocalizedOptionsList []LocalizedOptions

// Scan реализует интерфейс sql.Scanner для LocalizedOptionsList
func (l *LocalizedOptionsList) Scan(value interface{}) error {
	if value == nil {
		*l = LocalizedOptionsList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = LocalizedOptionsList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для LocalizedOptionsList
func (l LocalizedOptionsList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// UintList - JSONB множество идентификаторов (разблокированные категории/квизы,
// участники розыгрыша). Семантика множества обеспечивается методом Add.
type UintList []uint

// Scan реализует интерфейс sql.Scanner для UintList
func (l *UintList) Scan(value interface{}) error {
	if value == nil {
		*l = UintList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = UintList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для UintList
func (l UintList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Contains проверяет наличие идентификатора
func (l UintList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add добавляет идентификатор, если его ещё нет. Возвращает true, если список изменился.
func (l *UintList) Add(id uint) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Remove удаляет все вхождения перечисленных идентификаторов
func (l *UintList) Remove(ids ...uint) {
	drop := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := (*l)[:0]
	for _, v := range *l {
		if _, ok := drop[v]; !ok {
			kept = append(kept, v)
		}
	}
	*l = kept
}

package themesheet

import "errors"

// Ошибки уровня определений (тема, цвета, наследование стилей) и уровня
// спецификации сетки. Все они оборачиваются через fmt.Errorf("...: %w", ...)
// и проверяются errors.Is.
var (
	// ErrInvalidColor — некорректный синтаксис цвета при конструировании.
	ErrInvalidColor = errors.New("некорректный формат цвета")
	// ErrUnknownColor — обращение к отсутствующему цвету палитры.
	ErrUnknownColor = errors.New("неизвестный цвет")
	// ErrUnknownStyle — обращение к отсутствующему стилю темы.
	ErrUnknownStyle = errors.New("неизвестный стиль")
	// ErrUnknownParentStyle — extends ссылается на несуществующий стиль.
	ErrUnknownParentStyle = errors.New("неизвестный родительский стиль")
	// ErrUnknownFont — стиль ссылается на отсутствующий именованный шрифт.
	ErrUnknownFont = errors.New("неизвестный шрифт")
	// ErrCircularInheritance — цикл в графе extends (стилей или тем).
	ErrCircularInheritance = errors.New("циклическое наследование")
	// ErrThemeSchema — ресурс темы не проходит проверку обязательной формы.
	ErrThemeSchema = errors.New("некорректная схема темы")
	// ErrMergeOverlap — прямоугольники объединённых ячеек пересекаются.
	ErrMergeOverlap = errors.New("пересечение областей объединения ячеек")
)

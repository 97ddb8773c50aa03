package themesheet

import "io"

// docWriter — бэкенд сериализации собранного документа. Пара из
// интерфейса записи и возможностей позволяет держать пост-проходы
// (диаграммы, условные форматы, проверки значений) необязательными:
// бэкенд без возможности просто пропускает соответствующий проход.
type docWriter interface {
	write(doc *outDoc, w io.Writer) error
	caps() writerCaps
}

// writerCaps — возможности бэкенда за пределами базовой сетки.
type writerCaps struct {
	charts      bool
	condFormats bool
	validations bool
}

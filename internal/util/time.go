package util

import "time"

// Now devolve o horário atual em UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// DateOnly zera o componente de hora preservando o fuso.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package domain

import "fmt"

// Имена обязательных сигналов настроения.
const (
	SignalEnvironment = "environment_mood"
	SignalSmartwatch  = "smartwatch_mood"
	SignalVoice       = "voice_mood"
)

// MissingSignalError возвращается, когда обязательный сигнал настроения отсутствует.
type MissingSignalError struct {
	Signal string
}

func (e *MissingSignalError) Error() string {
	return fmt.Sprintf("отсутствует сигнал настроения: %s", e.Signal)
}

// MalformedRecordError описывает строку внешних данных, не прошедшую разбор.
// Такие строки пропускаются с предупреждением и не прерывают расчёт.
type MalformedRecordError struct {
	Kind   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("некорректная запись %s: %s", e.Kind, e.Reason)
}

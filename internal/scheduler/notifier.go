package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier пишет сообщения воронки в журнал.
// Используется, пока не подключен реальный транспорт доставки.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создает новый LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify выводит сообщение в журнал вместо отправки пользователю
func (n *LogNotifier) Notify(_ context.Context, telegramID int64, message string) error {
	n.logger.Info("Исходящее сообщение",
		zap.Int64("telegram_id", telegramID),
		zap.String("message", message))
	return nil
}

package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// GracefulShutdown останавливает сервис по сигналу операционной системы.
// Компоненты (HTTP сервер, планировщик, подключения к хранилищам)
// регистрируют функции остановки и закрываются в обратном порядке,
// чтобы зависимости переживали своих потребителей.
type GracefulShutdown struct {
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	stops []func(context.Context) error

	sig  chan os.Signal
	done chan struct{}
	once sync.Once
}

// NewGracefulShutdown создает координатор остановки, подписанный
// на SIGINT и SIGTERM
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	gs := &GracefulShutdown{
		logger:  logger,
		timeout: timeout,
		sig:     make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}

	signal.Notify(gs.sig, syscall.SIGINT, syscall.SIGTERM)

	return gs
}

// AddShutdownFunc регистрирует функцию остановки компонента.
// Функции выполняются в порядке, обратном регистрации.
func (gs *GracefulShutdown) AddShutdownFunc(f func(context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.stops = append(gs.stops, f)
}

// Wait блокируется до сигнала остановки, затем закрывает
// все зарегистрированные компоненты
func (gs *GracefulShutdown) Wait() {
	<-gs.sig
	gs.logger.Info("Получен сигнал остановки")
	gs.Shutdown()
}

// Shutdown инициирует остановку программно. Повторные и конкурентные
// вызовы дожидаются завершения первой остановки.
func (gs *GracefulShutdown) Shutdown() {
	gs.once.Do(func() {
		gs.runStops()
		close(gs.done)
	})
	<-gs.done
}

// Done возвращает канал, закрываемый после завершения остановки
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.done
}

// runStops выполняет функции остановки в обратном порядке
// под общим таймаутом
func (gs *GracefulShutdown) runStops() {
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	gs.mu.Lock()
	stops := make([]func(context.Context) error, len(gs.stops))
	copy(stops, gs.stops)
	gs.mu.Unlock()

	started := time.Now()
	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i](ctx); err != nil {
			gs.logger.Error("Ошибка при остановке компонента",
				zap.Int("component", i),
				zap.Error(err))
		}
	}

	gs.logger.Info("Сервис остановлен", zap.Duration("elapsed", time.Since(started)))
}

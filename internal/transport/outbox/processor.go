// Package outbox доставляет отложенные уведомления (email) из таблицы notifications.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/mailer"
	"github.com/sirupsen/logrus"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultSendTimeout            = 10 * time.Second
	defaultLimitPerIteration uint = 100
	defaultSendWorkers       uint = 10
	defaultIdlePause              = 5 * time.Second
)

// Processor в бесконечном цикле выгребает pending уведомления и рассылает их по SMTP.
// Каждое уведомление отправляется один раз: неудача фиксируется в записи без
// повторных попыток.
type Processor struct {
	svs               Servicer
	sender            mailer.Sender
	l                 *logrus.Entry
	limitPerIteration uint
	sendWorkers       uint
	idlePause         time.Duration
}

// New создает новый экземпляр процессора рассылки.
func New(svs Servicer, sender mailer.Sender, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "outbox",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		sender:            sender,
		l:                 loggerEntry,
		limitPerIteration: defaultLimitPerIteration,
		sendWorkers:       defaultSendWorkers,
		idlePause:         defaultIdlePause,
	}
}

// SetLimitPerIteration устанавливает кол-во уведомлений, обрабатываемых в одной итерации.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

// SetSendWorkers устанавливает кол-во воркеров отправки.
func (p *Processor) SetSendWorkers(workers uint) *Processor {
	p.sendWorkers = workers
	return p
}

// Run запускает обработку уведомлений в бесконечном цикле до отмены контекста.
//
// Алгоритм работы:
//  1. В каждой итерации запрашивается порция pending уведомлений (объем лимитируется
//     через SetLimitPerIteration).
//  2. Порция рассылается N воркерами (кол-во настраивается через SetSendWorkers)
//     по паттерну fan-out/fan-in.
//  3. Результаты фиксируются в базе: sent либо failed с текстом ошибки.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"limitPerIteration": p.limitPerIteration,
		"sendWorkers":       p.sendWorkers,
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		default:
			if err := p.process(ctx); err != nil {
				if errors.Is(err, ErrNoNotifications) {
					time.Sleep(p.idlePause)
					continue
				}
				p.l.WithError(err).Error("process error")
				time.Sleep(time.Second) // небольшая пауза чтоб не заддосить БД.
			}
		}
	}
}

// process выполняет одну итерацию: выборка порции, рассылка воркерами, фиксация
// результатов. Возвращает ErrNoNotifications если очередь пуста.
func (p *Processor) process(ctx context.Context) error {
	notifications, produceErr := p.produce(ctx)
	if produceErr != nil {
		return fmt.Errorf("process: %w", produceErr)
	}

	results := p.runWorkers(ctx, notifications)

	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	var lastErr error
	for _, result := range results {
		if result.Error != nil {
			if markErr := p.svs.MarkFailed(reqCtx, result.Notification.ID, result.Error.Error()); markErr != nil {
				lastErr = markErr
			}
			continue
		}
		if markErr := p.svs.MarkSent(reqCtx, result.Notification.ID); markErr != nil {
			lastErr = markErr
		}
	}
	if lastErr != nil {
		return fmt.Errorf("process: %s", lastErr.Error())
	}
	return nil
}

func (p *Processor) produce(ctx context.Context) ([]domain.Notification, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	notifications, err := p.svs.Pending(reqCtx, p.limitPerIteration)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if len(notifications) == 0 {
		return nil, ErrNoNotifications
	}
	return notifications, nil
}

// workerResult результат отправки одного уведомления.
type workerResult struct {
	WorkerID     uint
	Notification domain.Notification
	Error        error
}

// runWorkers запускает параллельных воркеров отправки и ожидает конца их работы.
func (p *Processor) runWorkers(ctx context.Context, notifications []domain.Notification) []workerResult {
	var taskCh = make(chan domain.Notification, len(notifications))
	for _, notification := range notifications {
		taskCh <- notification
	}
	close(taskCh)

	wg := new(sync.WaitGroup)
	wg.Add(int(p.sendWorkers)) //nolint:gosec

	var resultCh = make(chan workerResult, len(notifications))

	for i := uint(0); i < p.sendWorkers; i++ {
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	var results = make([]workerResult, 0, len(notifications))
	for result := range resultCh {
		l := p.l.WithFields(logrus.Fields{
			"worker":         result.WorkerID,
			"notificationID": result.Notification.ID,
		})
		if result.Error != nil {
			l.WithError(result.Error).Error("send notification")
		} else {
			l.Info("Sent")
		}
		results = append(results, result)
	}
	return results
}

// worker отправляет уведомления из канала и складывает результаты в resultCh.
func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan domain.Notification,
	resultCh chan<- workerResult,
) {
	defer wg.Done()

	for notification := range taskCh {
		select {
		case <-ctx.Done():
			return
		default:
		}
		resultCh <- workerResult{
			WorkerID:     workerID,
			Notification: notification,
			Error:        p.send(ctx, notification),
		}
	}
}

func (p *Processor) send(ctx context.Context, notification domain.Notification) error {
	sendCtx, cancel := context.WithTimeout(ctx, defaultSendTimeout)
	defer cancel()

	to, toErr := p.svs.RecipientEmail(sendCtx, notification.UserID)
	if toErr != nil {
		return fmt.Errorf("resolving recipient: %w", toErr)
	}

	if sendErr := p.sender.SendEmail(
		sendCtx, to, notification.Subject, notification.Body, notification.HTMLBody,
	); sendErr != nil {
		return fmt.Errorf("sending: %w", sendErr)
	}
	return nil
}

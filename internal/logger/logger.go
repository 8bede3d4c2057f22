package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New инициализирует логгер сервиса: JSON и уровень Info для продакшена.
// Вне release-режима gin переключаемся на текстовый формат с уровнем Debug,
// чтобы локально читать логи глазами.
func New(output io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	l.SetLevel(logrus.InfoLevel)

	if os.Getenv("GIN_MODE") != "release" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l
}

// WithComponent возвращает entry с проставленным полем component. Сервисы и
// фоновые воркеры помечают им свои записи, чтобы логи фильтровались по подсистеме.
func WithComponent(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}

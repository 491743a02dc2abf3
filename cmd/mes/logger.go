package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// dualHandler пишет всё в stdout и дублирует ошибки в errors.log.
// Первый сбой записи в файл сообщается в fallback, остальные молча пропускаются.
type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
	fallback     io.Writer
	reportOnce   *sync.Once
}

func newDualHandler(core, errs slog.Handler, fallback io.Writer) *dualHandler {
	return &dualHandler{coreHandler: core, errorHandler: errs, fallback: fallback, reportOnce: &sync.Once{}}
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	if h.coreHandler.Enabled(ctx, r.Level) {
		if err = h.coreHandler.Handle(ctx, r); err != nil {
			return err
		}
	}

	// ошибка записи в файл не должна терять запись в stdout
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		if ferr := h.errorHandler.Handle(ctx, r.Clone()); ferr != nil {
			h.reportOnce.Do(func() {
				fmt.Fprintf(h.fallback, "errors.log: запись не удалась: %v\n", ferr)
			})
		}
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
		fallback:     h.fallback,
		reportOnce:   h.reportOnce,
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
		fallback:     h.fallback,
		reportOnce:   h.reportOnce,
	}
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case envLocal, envProd:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	errorFile, err := os.OpenFile("errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		slog.Warn("Cannot open error log file", "error", err)
		return slog.New(coreHandler)
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError})

	return slog.New(newDualHandler(coreHandler, errorHandler, os.Stderr))
}

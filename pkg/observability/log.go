package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug log lines.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to the default logger
// when logger is nil.
func NewLogHooks(logger *log.Logger) LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return LogHooks{Logger: logger.WithPrefix("obs")}
}

// Install registers h for every hook category.
func (h LogHooks) Install() {
	SetEditorHooks(h)
	SetPersistenceHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnMutation(_ context.Context, docID, op string, err error) {
	if err != nil {
		h.Logger.Debug("mutation rejected", "doc", docID, "op", op, "error", err)
		return
	}
	h.Logger.Debug("mutation", "doc", docID, "op", op)
}

func (h LogHooks) OnRepair(_ context.Context, docID string, issues int) {
	h.Logger.Debug("graph repaired", "doc", docID, "issues", issues)
}

func (h LogHooks) OnLoad(_ context.Context, backend, docID string, d time.Duration, err error) {
	h.Logger.Debug("load", "backend", backend, "doc", docID, "took", d.Round(time.Microsecond), "error", err)
}

func (h LogHooks) OnSave(_ context.Context, backend, docID string, nodes int, d time.Duration, err error) {
	h.Logger.Debug("save", "backend", backend, "doc", docID, "nodes", nodes, "took", d.Round(time.Microsecond), "error", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Microsecond))
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

var (
	_ EditorHooks      = LogHooks{}
	_ PersistenceHooks = LogHooks{}
	_ CacheHooks       = LogHooks{}
	_ HTTPHooks        = LogHooks{}
)

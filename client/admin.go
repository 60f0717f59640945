package client

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// StatusBoard 帧线程与调试 HTTP 之间的交换区：
// 帧线程每帧 Publish 快照，并通过 Apply 非阻塞地取走配置修改
type StatusBoard struct {
	mu      sync.RWMutex
	status  Status
	metrics *Metrics
	updates chan time.Duration
}

func NewStatusBoard(metrics *Metrics) *StatusBoard {
	return &StatusBoard{metrics: metrics, updates: make(chan time.Duration, 8)}
}

func (b *StatusBoard) Publish(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

func (b *StatusBoard) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Apply 在帧线程中应用所有待处理的发送间隔修改
func (b *StatusBoard) Apply(c *Client) {
	for {
		select {
		case d := <-b.updates:
			c.SetSendInterval(d)
		default:
			return
		}
	}
}

// NewAdminRouter 调试接口
// GET  /healthz
// GET  /status
// GET  /metrics
// GET  /admin/config
// POST /admin/config {"sendIntervalMs":50}
func NewAdminRouter(b *StatusBoard) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.Status())
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.metrics.Snapshot())
	})
	r.Get("/admin/config", func(w http.ResponseWriter, r *http.Request) {
		ms := b.Status().SendInterval * 1000
		writeJSON(w, http.StatusOK, map[string]any{"sendIntervalMs": ms})
	})
	r.Post("/admin/config", b.handleConfig)
	return r
}

func (b *StatusBoard) handleConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SendIntervalMs *int `json:"sendIntervalMs,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.SendIntervalMs == nil || *body.SendIntervalMs <= 0 {
		http.Error(w, "sendIntervalMs must be positive", http.StatusBadRequest)
		return
	}
	select {
	case b.updates <- time.Duration(*body.SendIntervalMs) * time.Millisecond:
	default:
		http.Error(w, "too many pending updates", http.StatusServiceUnavailable)
		return
	}
	Log.Infof("config update queued: sendIntervalMs=%d", *body.SendIntervalMs)
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

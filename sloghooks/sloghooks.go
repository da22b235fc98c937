// Package sloghooks implements bpcache.Hooks on top of log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/bpcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ bpcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("bpcache.hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("bpcache.miss", "key", h.redact(storageKey))
}

func (h *Hooks) DecodeError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("bpcache.decode_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) SaveRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("bpcache.save_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) ClearMiss(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("bpcache.clear_miss", "key", h.redact(storageKey))
}

func (h *Hooks) CommitFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("bpcache.commit_failed",
		"key", h.redact(storageKey),
		"err", err)
}

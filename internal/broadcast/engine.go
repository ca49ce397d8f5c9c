// Package broadcast delivers one admin-chosen message to every known user.
//
// Each recipient gets the message forwarded by reference first, which keeps
// formatting the platform cannot otherwise reproduce. If forwarding fails the
// content is re-sent directly according to its kind. Recipients are served
// one at a time and a failure never stops the rest of the run.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/edgard/promobot/internal/metrics"
)

var (
	// ErrEmptyContent means the Source has nothing to broadcast.
	ErrEmptyContent = errors.New("broadcast source has no content")
	// ErrDeliveryFailed wraps the errors of a recipient both strategies failed for.
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrMissingPayload means a media Source has no file reference to resend.
	ErrMissingPayload = errors.New("media payload missing file reference")
)

// Platform is the subset of the messaging client the engine needs.
type Platform interface {
	Forward(ctx context.Context, to int64, ref Reference) error
	SendText(ctx context.Context, to int64, text string) error
	SendPhoto(ctx context.Context, to int64, fileID, caption string) error
	SendVideo(ctx context.Context, to int64, fileID, caption string) error
	SendDocument(ctx context.Context, to int64, fileID, caption string) error
}

// Via records which strategy delivered a message.
type Via int

const (
	ViaNone Via = iota
	ViaForward
	ViaResend
)

func (v Via) String() string {
	switch v {
	case ViaForward:
		return "forward"
	case ViaResend:
		return "resend"
	default:
		return "none"
	}
}

// Delivery is the outcome for one recipient: delivered via a strategy, or
// failed with Err and a short Reason.
type Delivery struct {
	Recipient int64
	Via       Via
	Err       error
	Reason    string
}

// Delivered reports whether the recipient got the message.
func (d Delivery) Delivered() bool { return d.Err == nil }

// Result tallies a broadcast. Succeeded+Failed always equals Total.
type Result struct {
	Succeeded int
	Failed    int
	Total     int
	Forwarded int
	Resent    int
}

// Request describes one broadcast.
type Request struct {
	Requester int64
	Source    Source
	// Audience is every known user; the requester is excluded from it.
	Audience []int64
	// OnStart, if set, runs once before the first delivery.
	OnStart func(ctx context.Context, total int)
}

// Option configures an Engine.
type Option func(*Engine)

// WithReasonClassifier sets how platform errors are mapped to failure reasons.
func WithReasonClassifier(fn func(error) string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.classify = fn
		}
	}
}

// Engine runs broadcasts against a Platform.
type Engine struct {
	platform Platform
	logger   *slog.Logger
	classify func(error) string
}

// NewEngine creates an Engine.
func NewEngine(platform Platform, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Engine{
		platform: platform,
		logger:   logger.With("component", "broadcast"),
		classify: func(error) string { return "other" },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recipients returns audience without requester, deduplicated, in input order.
func Recipients(audience []int64, requester int64) []int64 {
	seen := make(map[int64]struct{}, len(audience))
	out := make([]int64, 0, len(audience))
	for _, id := range audience {
		if id == requester {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Broadcast delivers req.Source to every recipient. The caller must already
// have checked that req.Requester is an admin.
//
// It returns ErrEmptyContent before any platform call when the Source is
// empty, and a zero Result without platform calls when nobody but the
// requester is known. If ctx is cancelled the run stops between recipients
// and the partial Result is returned with ctx.Err().
func (e *Engine) Broadcast(ctx context.Context, req Request) (Result, error) {
	log := e.logger.With("requester_id", req.Requester, "source", req.Source.String())

	if err := req.Source.Validate(); err != nil {
		metrics.ObserveBroadcast("empty_content", 0)
		log.WarnContext(ctx, "Broadcast rejected", "error", err)
		return Result{}, err
	}

	recipients := Recipients(req.Audience, req.Requester)
	if len(recipients) == 0 {
		metrics.ObserveBroadcast("no_recipients", 0)
		log.InfoContext(ctx, "Broadcast has no recipients")
		return Result{}, nil
	}

	if req.OnStart != nil {
		req.OnStart(ctx, len(recipients))
	}

	log.InfoContext(ctx, "Broadcast started", "recipients", len(recipients))
	startTime := time.Now()

	var res Result
	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			metrics.ObserveBroadcast("cancelled", time.Since(startTime))
			log.WarnContext(ctx, "Broadcast cancelled", "attempted", res.Total, "remaining", len(recipients)-res.Total)
			return res, err
		}

		d := e.deliver(ctx, to, req.Source)
		res.Total++
		metrics.ObserveDelivery(d.Via.String(), outcomeLabel(d))

		if !d.Delivered() {
			res.Failed++
			log.ErrorContext(ctx, "Failed to deliver broadcast", "recipient_id", to, "reason", d.Reason, "error", d.Err)
			continue
		}

		res.Succeeded++
		if d.Via == ViaForward {
			res.Forwarded++
		} else {
			res.Resent++
		}
		log.DebugContext(ctx, "Delivered broadcast", "recipient_id", to, "via", d.Via)
	}

	duration := time.Since(startTime)
	metrics.ObserveBroadcast("completed", duration)
	log.InfoContext(ctx, "Broadcast completed",
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"total", res.Total,
		"forwarded", res.Forwarded,
		"resent", res.Resent,
		"duration", duration,
	)
	return res, nil
}

// deliver runs the two-step strategy for one recipient.
func (e *Engine) deliver(ctx context.Context, to int64, src Source) Delivery {
	fwdErr := e.platform.Forward(ctx, to, src.Origin)
	if fwdErr == nil {
		return Delivery{Recipient: to, Via: ViaForward}
	}

	fwdReason := e.reason(fwdErr)
	metrics.ObserveDeliveryError("forward", fwdReason)
	e.logger.WarnContext(ctx, "Forward failed, resending", "recipient_id", to, "reason", fwdReason, "error", fwdErr)

	resendErr := e.resend(ctx, to, src)
	if resendErr == nil {
		return Delivery{Recipient: to, Via: ViaResend}
	}

	reason := e.reason(resendErr)
	metrics.ObserveDeliveryError("resend", reason)
	return Delivery{
		Recipient: to,
		Via:       ViaNone,
		Err:       fmt.Errorf("%w: forward: %v; resend: %w", ErrDeliveryFailed, fwdErr, resendErr),
		Reason:    reason,
	}
}

// resend sends the content freshly, chosen by kind.
func (e *Engine) resend(ctx context.Context, to int64, src Source) error {
	if src.Kind.IsMedia() && src.FileID == "" {
		return ErrMissingPayload
	}

	switch src.Kind {
	case KindPhoto:
		return e.platform.SendPhoto(ctx, to, src.FileID, src.Caption)
	case KindVideo:
		return e.platform.SendVideo(ctx, to, src.FileID, src.Caption)
	case KindDocument:
		return e.platform.SendDocument(ctx, to, src.FileID, src.Caption)
	case KindText:
		return e.platform.SendText(ctx, to, src.Text)
	default:
		return ErrEmptyContent
	}
}

func (e *Engine) reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingPayload):
		return "missing_payload"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return e.classify(err)
	}
}

func outcomeLabel(d Delivery) string {
	if d.Delivered() {
		return "delivered"
	}
	return "failed"
}

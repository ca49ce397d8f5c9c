package broadcast_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/promobot/internal/broadcast"
)

var (
	errForward = errors.New("forward refused")
	errSend    = errors.New("send refused")
)

type call struct {
	Method  string
	To      int64
	Payload string
}

// fakePlatform returns per-recipient outcomes and records every call.
type fakePlatform struct {
	mu         sync.Mutex
	calls      []call
	forwardErr map[int64]error
	sendErr    map[int64]error
	onCall     func(call)
}

func (f *fakePlatform) record(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(c)
	}
}

func (f *fakePlatform) Forward(_ context.Context, to int64, ref broadcast.Reference) error {
	f.record(call{Method: "forward", To: to})
	return f.forwardErr[to]
}

func (f *fakePlatform) SendText(_ context.Context, to int64, text string) error {
	f.record(call{Method: "text", To: to, Payload: text})
	return f.sendErr[to]
}

func (f *fakePlatform) SendPhoto(_ context.Context, to int64, fileID, _ string) error {
	f.record(call{Method: "photo", To: to, Payload: fileID})
	return f.sendErr[to]
}

func (f *fakePlatform) SendVideo(_ context.Context, to int64, fileID, _ string) error {
	f.record(call{Method: "video", To: to, Payload: fileID})
	return f.sendErr[to]
}

func (f *fakePlatform) SendDocument(_ context.Context, to int64, fileID, _ string) error {
	f.record(call{Method: "document", To: to, Payload: fileID})
	return f.sendErr[to]
}

func (f *fakePlatform) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var origin = broadcast.Reference{ChatID: 42, MessageID: 7}

func TestRecipients(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		audience  []int64
		requester int64
		want      []int64
	}{
		{"excludes requester", []int64{1, 2, 3, 42}, 42, []int64{1, 2, 3}},
		{"only requester", []int64{42}, 42, []int64{}},
		{"empty", nil, 42, []int64{}},
		{"deduplicates keeping order", []int64{3, 1, 3, 2, 1}, 9, []int64{3, 1, 2}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, broadcast.Recipients(tt.audience, tt.requester))
		})
	}
}

func TestSourceValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     broadcast.Source
		wantErr bool
	}{
		{"zero value", broadcast.Source{}, true},
		{"empty text", broadcast.TextSource(origin, ""), true},
		{"text", broadcast.TextSource(origin, "hello"), false},
		{"photo without caption", broadcast.MediaSource(origin, broadcast.KindPhoto, "file", ""), false},
		{"document with caption", broadcast.MediaSource(origin, broadcast.KindDocument, "file", "cap"), false},
		{"media kind none", broadcast.MediaSource(origin, broadcast.KindNone, "file", "cap"), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.src.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, broadcast.ErrEmptyContent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBroadcastMixedOutcomes(t *testing.T) {
	t.Parallel()

	p := &fakePlatform{
		forwardErr: map[int64]error{2: errForward, 3: errForward},
		sendErr:    map[int64]error{3: errSend},
	}
	e := broadcast.NewEngine(p, nil)

	res, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 42,
		Source:    broadcast.TextSource(origin, "promo"),
		Audience:  []int64{1, 2, 3, 42},
	})
	require.NoError(t, err)
	assert.Equal(t, broadcast.Result{Succeeded: 2, Failed: 1, Total: 3, Forwarded: 1, Resent: 1}, res)

	assert.Equal(t, []call{
		{Method: "forward", To: 1},
		{Method: "forward", To: 2},
		{Method: "text", To: 2, Payload: "promo"},
		{Method: "forward", To: 3},
		{Method: "text", To: 3, Payload: "promo"},
	}, p.calls)
}

func TestBroadcastNoRecipients(t *testing.T) {
	t.Parallel()

	p := &fakePlatform{}
	e := broadcast.NewEngine(p, nil)
	started := false

	res, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 42,
		Source:    broadcast.TextSource(origin, "promo"),
		Audience:  []int64{42},
		OnStart:   func(context.Context, int) { started = true },
	})
	require.NoError(t, err)
	assert.Equal(t, broadcast.Result{}, res)
	assert.Zero(t, p.count())
	assert.False(t, started)
}

func TestBroadcastEmptyContent(t *testing.T) {
	t.Parallel()

	p := &fakePlatform{}
	e := broadcast.NewEngine(p, nil)
	started := false

	res, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 42,
		Source:    broadcast.Source{Origin: origin},
		Audience:  []int64{1, 2, 3},
		OnStart:   func(context.Context, int) { started = true },
	})
	require.ErrorIs(t, err, broadcast.ErrEmptyContent)
	assert.Equal(t, broadcast.Result{}, res)
	assert.Zero(t, p.count())
	assert.False(t, started)
}

func TestBroadcastFallbackAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	const n = 25
	audience := make([]int64, 0, n)
	fwd := make(map[int64]error, n)
	for i := int64(1); i <= n; i++ {
		audience = append(audience, i)
		fwd[i] = errForward
	}

	p := &fakePlatform{forwardErr: fwd}
	e := broadcast.NewEngine(p, nil)

	res, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 1000,
		Source:    broadcast.TextSource(origin, "promo"),
		Audience:  audience,
	})
	require.NoError(t, err)
	assert.Equal(t, n, res.Succeeded)
	assert.Zero(t, res.Failed)
	assert.Equal(t, n, res.Resent)
	assert.Equal(t, 2*n, p.count())
}

func TestBroadcastResendByKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    broadcast.Source
		method string
	}{
		{"text", broadcast.TextSource(origin, "hi"), "text"},
		{"photo", broadcast.MediaSource(origin, broadcast.KindPhoto, "p-big", "cap"), "photo"},
		{"video", broadcast.MediaSource(origin, broadcast.KindVideo, "v1", ""), "video"},
		{"document", broadcast.MediaSource(origin, broadcast.KindDocument, "d1", "cap"), "document"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &fakePlatform{forwardErr: map[int64]error{1: errForward}}
			e := broadcast.NewEngine(p, nil)

			res, err := e.Broadcast(context.Background(), broadcast.Request{
				Requester: 42,
				Source:    tt.src,
				Audience:  []int64{1},
			})
			require.NoError(t, err)
			assert.Equal(t, 1, res.Resent)
			require.Len(t, p.calls, 2)
			assert.Equal(t, tt.method, p.calls[1].Method)
		})
	}
}

func TestBroadcastMissingPayload(t *testing.T) {
	t.Parallel()

	p := &fakePlatform{forwardErr: map[int64]error{1: errForward}}
	var reasons []string
	e := broadcast.NewEngine(p, nil, broadcast.WithReasonClassifier(func(err error) string {
		reasons = append(reasons, err.Error())
		return "other"
	}))

	res, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 42,
		Source:    broadcast.MediaSource(origin, broadcast.KindVideo, "", "cap"),
		Audience:  []int64{1},
	})
	require.NoError(t, err)
	assert.Equal(t, broadcast.Result{Failed: 1, Total: 1}, res)
	// Only the forward attempt reaches the platform.
	assert.Equal(t, []call{{Method: "forward", To: 1}}, p.calls)
	// The classifier sees the forward error only; missing payload is tagged by the engine.
	assert.Equal(t, []string{errForward.Error()}, reasons)
}

func TestBroadcastOnStartRunsOnce(t *testing.T) {
	t.Parallel()

	p := &fakePlatform{}
	e := broadcast.NewEngine(p, nil)

	var totals []int
	callsAtStart := -1
	_, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 42,
		Source:    broadcast.TextSource(origin, "promo"),
		Audience:  []int64{1, 2, 42},
		OnStart: func(_ context.Context, total int) {
			totals = append(totals, total)
			callsAtStart = p.count()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, totals)
	assert.Zero(t, callsAtStart)
}

func TestBroadcastCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakePlatform{}
	p.onCall = func(c call) {
		if c.To == 2 {
			cancel()
		}
	}
	e := broadcast.NewEngine(p, nil)

	res, err := e.Broadcast(ctx, broadcast.Request{
		Requester: 42,
		Source:    broadcast.TextSource(origin, "promo"),
		Audience:  []int64{1, 2, 3, 4},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, broadcast.Result{Succeeded: 2, Total: 2, Forwarded: 2}, res)
	assert.Equal(t, res.Total, res.Succeeded+res.Failed)
	assert.Equal(t, 2, p.count())
}

func TestDeliveryErrorWrapsBoth(t *testing.T) {
	t.Parallel()

	p := &fakePlatform{
		forwardErr: map[int64]error{1: errForward},
		sendErr:    map[int64]error{1: errSend},
	}
	var got []error
	e := broadcast.NewEngine(p, nil, broadcast.WithReasonClassifier(func(err error) string {
		got = append(got, err)
		return "blocked"
	}))

	res, err := e.Broadcast(context.Background(), broadcast.Request{
		Requester: 42,
		Source:    broadcast.TextSource(origin, "promo"),
		Audience:  []int64{1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, got, 2)
	assert.ErrorIs(t, got[0], errForward)
	assert.ErrorIs(t, got[1], errSend)
}

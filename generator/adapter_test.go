package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAdapterFirstSuccessWins(t *testing.T) {
	var called []string
	a := newAdapter("test", []callShape{
		{name: "first", invoke: func(context.Context, string) (string, error) {
			called = append(called, "first")
			return "", errors.New("unsupported signature")
		}},
		{name: "second", invoke: func(context.Context, string) (string, error) {
			called = append(called, "second")
			return "model text", nil
		}},
		{name: "third", invoke: func(context.Context, string) (string, error) {
			called = append(called, "third")
			return "should not run", nil
		}},
	})

	text, err := a.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "model text" {
		t.Errorf("got %q", text)
	}
	if strings.Join(called, ",") != "first,second" {
		t.Errorf("later shapes must not run after a success: %v", called)
	}
}

func TestAdapterEmptyTextCountsAsFailure(t *testing.T) {
	a := newAdapter("test", []callShape{
		{name: "empty", invoke: func(context.Context, string) (string, error) {
			return "   \n", nil
		}},
		{name: "good", invoke: func(context.Context, string) (string, error) {
			return "text", nil
		}},
	})

	text, err := a.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "text" {
		t.Errorf("got %q", text)
	}
}

func TestAdapterExhaustion(t *testing.T) {
	a := newAdapter("test", []callShape{
		{name: "alpha", invoke: func(context.Context, string) (string, error) {
			return "", errors.New("boom one")
		}},
		{name: "beta", invoke: func(context.Context, string) (string, error) {
			return "", errors.New("boom two")
		}},
	})

	_, err := a.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}

	var unavailable *ModelUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *ModelUnavailableError, got %T", err)
	}
	if len(unavailable.Failures) != 2 {
		t.Fatalf("expected both failures recorded, got %d", len(unavailable.Failures))
	}
	if unavailable.Failures[0].Shape != "alpha" || unavailable.Failures[1].Shape != "beta" {
		t.Errorf("failure order not preserved: %+v", unavailable.Failures)
	}
	msg := err.Error()
	for _, want := range []string{"alpha", "boom one", "beta", "boom two"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestAdapterTimeoutFeedsScan(t *testing.T) {
	a := newAdapter("test", []callShape{
		{name: "slow", invoke: func(ctx context.Context, _ string) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "too late", nil
			}
		}},
		{name: "fast", invoke: func(context.Context, string) (string, error) {
			return "quick", nil
		}},
	})
	a.timeout = 20 * time.Millisecond

	text, err := a.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "quick" {
		t.Errorf("timed-out shape should fall through to the next: %q", text)
	}
}

func TestScanEnvelope(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"chat completions", `{"choices":[{"message":{"content":"hi"}}]}`, "hi", true},
		{"legacy completions", `{"choices":[{"text":"hi"}]}`, "hi", true},
		{"output text", `{"output_text":"hi"}`, "hi", true},
		{"responses output", `{"output":[{"content":[{"text":"hi"}]}]}`, "hi", true},
		{"candidates", `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`, "hi", true},
		{"content list", `{"content":[{"text":"hi"}]}`, "hi", true},
		{"nothing", `{"usage":{"total_tokens":3}}`, "", false},
		{"not json", `plain text`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := scanEnvelope(tc.body)
			if ok != tc.ok || got != tc.want {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

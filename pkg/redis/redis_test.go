package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/zoobzio/transit"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.ConfigSet(ctx, "notify-keyspace-events", "KEA").Err(); err != nil {
		t.Fatalf("failed to enable keyspace notifications: %v", err)
	}

	return client
}

func receive(t *testing.T, ch <-chan []byte, want string) {
	t.Helper()
	select {
	case data := <-ch:
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, data)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for %q", want)
	}
}

func TestWatcher_EmitsInitialValue(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Set(ctx, "light:mode", " off\n", 0).Err(); err != nil {
		t.Fatalf("failed to set initial value: %v", err)
	}

	ch, err := New(client, "light:mode").Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receive(t, ch, "off")
}

func TestWatcher_EmitsOnChange(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Set(ctx, "light:mode", "off", 0).Err(); err != nil {
		t.Fatalf("failed to set initial value: %v", err)
	}

	ch, err := New(client, "light:mode").Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receive(t, ch, "off")

	// Same value again is not re-emitted.
	for _, v := range []string{"off", "on"} {
		if err := client.Set(ctx, "light:mode", v, 0).Err(); err != nil {
			t.Fatalf("failed to update value: %v", err)
		}
	}
	receive(t, ch, "on")
}

func TestWatcher_ClosesOnContextCancel(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	if err := client.Set(ctx, "light:mode", "on", 0).Err(); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	ch, err := New(client, "light:mode").Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	<-ch

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestSelectors(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	if _, err := Selectors(ctx, client, "light"); !errors.Is(err, ErrEmptySelectors) {
		t.Errorf("expected ErrEmptySelectors, got %v", err)
	}

	if err := client.HSet(ctx, "light", "on", "#00ff00", "off", "#ff0000").Err(); err != nil {
		t.Fatalf("failed to write hash: %v", err)
	}
	m, err := Selectors(ctx, client, "light")
	if err != nil {
		t.Fatalf("Selectors() error = %v", err)
	}
	if m["on"] != "#00ff00" || m["off"] != "#ff0000" {
		t.Errorf("unexpected selectors %v", m)
	}
}

func TestBinding_FollowsRedisKey(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.HSet(ctx, "light", "on", "#00ff00", "off", "#ff0000").Err(); err != nil {
		t.Fatalf("failed to write hash: %v", err)
	}
	if err := client.Set(ctx, "light:mode", "off", 0).Err(); err != nil {
		t.Fatalf("failed to set key: %v", err)
	}

	selectors, err := Selectors(ctx, client, "light")
	if err != nil {
		t.Fatalf("Selectors() error = %v", err)
	}
	b, err := transit.Bind(transit.BindConfig[string, string]{
		Config:    transit.Config[string]{Initial: "#ff0000"},
		Key:       "off",
		Selectors: selectors,
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer b.Dispose()

	go func() { _ = b.Watch(ctx, New(client, "light:mode")) }()

	if err := client.Set(ctx, "light:mode", "on", 0).Err(); err != nil {
		t.Fatalf("failed to set key: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for b.Key() != "on" {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for binding to follow redis key")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if v := b.Display().Value(); v != "#00ff00" {
		t.Errorf("expected #00ff00, got %s", v)
	}
}

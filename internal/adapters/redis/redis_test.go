package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/sponsored-events/internal/adapters/redis"
	"github.com/robertarktes/sponsored-events/internal/idempotency"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/rateLimit"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T, ctx context.Context) *redis.Client {
	t.Helper()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { redisContainer.Terminate(context.Background()) })

	addr, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestInventory_TicketPool(t *testing.T) {
	ctx := context.Background()
	client := startRedis(t, ctx)
	factory := redisadapter.InventoryFactory(client, "test", observability.NewDiscardLogger())
	inv := factory("Fringe", "1 High Street")
	other := factory("Festival", "1 High Street")

	start := time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC)
	inv.RecordNewEvent(ctx, 1, "Jazz", 10)
	inv.RecordNewPerformance(ctx, 1, 1, start, start.Add(time.Hour))
	other.RecordNewEvent(ctx, 1, "Other", 3)

	inv.RecordNewBooking(ctx, 1, 1, 1, "Ann", "ann@example.com", 4)
	inv.RecordNewBooking(ctx, 1, 1, 2, "Bob", "bob@example.com", 9)
	if left := inv.NumTicketsLeft(ctx, 1, 1); left != 0 {
		t.Fatalf("expected an over-booking to be clamped to 0 left, got %d", left)
	}
	if left := other.NumTicketsLeft(ctx, 1, 1); left != 3 {
		t.Fatalf("organisers must not share pools, got %d", left)
	}

	inv.CancelBooking(ctx, 1)
	inv.CancelBooking(ctx, 1)
	if left := inv.NumTicketsLeft(ctx, 1, 1); left != 4 {
		t.Fatalf("expected 4 tickets after one cancellation, got %d", left)
	}

	inv.CancelEvent(ctx, 1, "weather")
	inv.CancelBooking(ctx, 2)
	if left := inv.NumTicketsLeft(ctx, 1, 1); left != 0 {
		t.Fatalf("cancelled event must have no tickets, got %d", left)
	}
	if left := inv.NumTicketsLeft(ctx, 99, 1); left != 0 {
		t.Fatalf("unknown event must have no tickets, got %d", left)
	}
}

func TestIdempotency_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := startRedis(t, ctx)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(client), time.Minute)

	if resp, err := idemp.Get(ctx, "missing"); err != nil || resp != nil {
		t.Fatalf("expected nothing, got %v %v", resp, err)
	}
	if err := idemp.Set(ctx, "key", idempotency.Response{Status: 201, Result: []byte(`{"id":1}`)}); err != nil {
		t.Fatal(err)
	}
	resp, err := idemp.Get(ctx, "key")
	if err != nil || resp == nil || resp.Status != 201 || string(resp.Result) != `{"id":1}` {
		t.Fatalf("unexpected stored response %+v %v", resp, err)
	}
}

func TestRateLimiter_Window(t *testing.T) {
	ctx := context.Background()
	client := startRedis(t, ctx)
	rl := rateLimit.NewRateLimiter(redisadapter.NewCache(client), observability.NewDiscardLogger())

	for i := 0; i < 3; i++ {
		if !rl.Allow(ctx, "ip:1", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow(ctx, "ip:1", 3, time.Minute) {
		t.Fatal("fourth request should be limited")
	}
	if !rl.Allow(ctx, "ip:2", 3, time.Minute) {
		t.Fatal("keys must be limited independently")
	}
}

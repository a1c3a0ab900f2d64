package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMultiFansOut(t *testing.T) {
	var got []Type
	rec := Func(func(_ context.Context, e Event) { got = append(got, e.Type) })

	Multi{rec, Nop{}, rec}.Emit(context.Background(), Event{Type: TemplateCreated})

	if len(got) != 2 || got[0] != TemplateCreated {
		t.Errorf("got %v, want two template.created deliveries", got)
	}
}

func TestRedisPublisherPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sub := client.Subscribe(context.Background(), "test:events")
	t.Cleanup(func() { sub.Close() })
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p := NewRedisPublisher(client, "test:events")
	p.Emit(context.Background(), Event{
		Type:       DocumentGenerated,
		TemplateID: "t1",
		DocumentID: "d1",
		Version:    3,
		At:         time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	})
	p.Wait()

	select {
	case msg := <-sub.Channel():
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if e.Type != DocumentGenerated || e.DocumentID != "d1" || e.Version != 3 {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisherUnavailableDoesNotBlock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	p := NewRedisPublisher(client, "")
	start := time.Now()
	p.Emit(context.Background(), Event{Type: TemplateDeleted})
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Emit blocked on an unavailable server")
	}
	p.Wait()
}

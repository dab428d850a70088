package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

func sampleTicket() model.KitchenTicket {
	return model.KitchenTicket{
		TicketID:     "0b7c6f1e-2f4d-4a53-9a8e-1d2c3b4a5f60",
		OrderID:      42,
		TableNumber:  3,
		EmployeeName: "Yuki",
		OrderedAt:    time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC),
		ConfirmedAt:  time.Date(2026, 3, 4, 11, 5, 0, 0, time.FixedZone("UTC+1", 3600)),
		Items:        []model.TicketItem{{Name: "Miso Soup", Quantity: 2}, {Name: "Gyoza", Quantity: 1}},
	}
}

func TestNewTicketEvent(t *testing.T) {
	ev := NewTicketEvent(sampleTicket())
	if ev.Type != TicketEventType || ev.OrderID != 42 || len(ev.Items) != 2 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.ConfirmedAt != "2026-03-04T10:05:00Z" {
		t.Fatalf("confirmed_at = %s", ev.ConfirmedAt)
	}

	empty := NewTicketEvent(model.KitchenTicket{TicketID: "x"})
	b, _ := json.Marshal(empty)
	if !strings.Contains(string(b), `"items":[]`) {
		t.Fatalf("items must encode as an array: %s", b)
	}
}

func TestHandleMessageAppendsKitchenLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused", "kitchen.tickets", dir, logger.Discard())

	body, err := json.Marshal(NewTicketEvent(sampleTicket()))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := c.handleMessage(body); err != nil {
			t.Fatalf("handleMessage: %v", err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, KitchenLogFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), raw)
	}
	want := `[2026-03-04T10:05:00Z] Kitchen ticket | ticket_id=0b7c6f1e-2f4d-4a53-9a8e-1d2c3b4a5f60 | order_id=42 | table=3 | employee="Yuki" | items=[2x Miso Soup, 1x Gyoza]`
	if lines[0] != want {
		t.Fatalf("line =\n%s\nwant\n%s", lines[0], want)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	c := NewConsumer("amqp://unused", "kitchen.tickets", dir, logger.Discard())
	if err := c.handleMessage([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
	if err := c.handleMessage([]byte(`{"order_id":1}`)); err == nil {
		t.Fatal("expected error for ticket without id")
	}
	if _, err := os.Stat(filepath.Join(dir, KitchenLogFile)); !os.IsNotExist(err) {
		t.Fatalf("log file written for rejected message: %v", err)
	}
}

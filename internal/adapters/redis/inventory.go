package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/sponsored-events/internal/inventory"
	"github.com/robertarktes/sponsored-events/internal/observability"
)

var bookScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 or redis.call('HGET', KEYS[1], 'cancelled') == '1' then
	return 0
end
local left = tonumber(redis.call('HGET', KEYS[1], 'left'))
local n = tonumber(ARGV[1])
if n > left then n = left end
redis.call('HSET', KEYS[1], 'left', left - n)
redis.call('HSET', KEYS[2], 'event', ARGV[2], 'tickets', n)
return n
`)

var cancelBookingScript = redis.NewScript(`
local n = redis.call('HGET', KEYS[1], 'tickets')
if not n then return 0 end
redis.call('DEL', KEYS[1])
if redis.call('EXISTS', KEYS[2]) == 0 or redis.call('HGET', KEYS[2], 'cancelled') == '1' then
	return 0
end
local max = tonumber(redis.call('HGET', KEYS[2], 'max'))
local left = tonumber(redis.call('HGET', KEYS[2], 'left')) + tonumber(n)
if left > max then left = max end
redis.call('HSET', KEYS[2], 'left', left)
return tonumber(n)
`)

// Inventory keeps one organiser's ticket pools in Redis hashes. Like the
// in-process inventory, tickets form one pool per event.
type Inventory struct {
	client *redis.Client
	prefix string
	logger observability.Logger
}

// InventoryFactory builds Redis inventories namespaced under namespace and
// a stable id derived from the organisation's name and address.
func InventoryFactory(client *redis.Client, namespace string, logger observability.Logger) inventory.Factory {
	return func(orgName, orgAddress string) inventory.System {
		org := uuid.NewSHA1(uuid.NameSpaceOID, []byte(orgName+"\n"+orgAddress))
		return &Inventory{
			client: client,
			prefix: "inv:" + namespace + ":" + org.String() + ":",
			logger: logger.WithField("org_name", orgName),
		}
	}
}

func (i *Inventory) eventKey(id int64) string {
	return i.prefix + "event:" + strconv.FormatInt(id, 10)
}

func (i *Inventory) bookingKey(id int64) string {
	return i.prefix + "booking:" + strconv.FormatInt(id, 10)
}

func (i *Inventory) performanceKey(id int64) string {
	return i.prefix + "performance:" + strconv.FormatInt(id, 10)
}

func (i *Inventory) check(op string, err error) {
	if err != nil && err != redis.Nil {
		i.logger.WithField("op", op).Error("redis inventory: ", err)
	}
}

func (i *Inventory) RecordNewEvent(ctx context.Context, eventID int64, title string, maxTickets int) {
	if maxTickets < 0 {
		maxTickets = 0
	}
	err := i.client.HSet(ctx, i.eventKey(eventID),
		"title", title,
		"max", maxTickets,
		"left", maxTickets,
		"cancelled", 0,
		"percent", 0,
	).Err()
	i.check("record_event", err)
}

func (i *Inventory) RecordNewPerformance(ctx context.Context, eventID, performanceID int64, start, end time.Time) {
	err := i.client.HSet(ctx, i.performanceKey(performanceID),
		"event", eventID,
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
	).Err()
	i.check("record_performance", err)
}

func (i *Inventory) RecordNewBooking(ctx context.Context, eventID, _, bookingID int64, _, _ string, tickets int) {
	err := bookScript.Run(ctx, i.client,
		[]string{i.eventKey(eventID), i.bookingKey(bookingID)},
		tickets, eventID,
	).Err()
	i.check("record_booking", err)
}

func (i *Inventory) CancelBooking(ctx context.Context, bookingID int64) {
	eventID, err := i.client.HGet(ctx, i.bookingKey(bookingID), "event").Int64()
	if err != nil {
		i.check("cancel_booking", err)
		return
	}
	err = cancelBookingScript.Run(ctx, i.client,
		[]string{i.bookingKey(bookingID), i.eventKey(eventID)},
	).Err()
	i.check("cancel_booking", err)
}

func (i *Inventory) CancelEvent(ctx context.Context, eventID int64, message string) {
	key := i.eventKey(eventID)
	n, err := i.client.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		i.check("cancel_event", err)
		return
	}
	err = i.client.HSet(ctx, key, "cancelled", 1, "left", 0, "message", message).Err()
	i.check("cancel_event", err)
}

func (i *Inventory) RecordSponsorshipAcceptance(ctx context.Context, eventID int64, percent int) {
	i.check("sponsorship", i.client.HSet(ctx, i.eventKey(eventID), "percent", percent).Err())
}

func (i *Inventory) RecordSponsorshipRejection(ctx context.Context, eventID int64) {
	i.check("sponsorship", i.client.HSet(ctx, i.eventKey(eventID), "percent", 0).Err())
}

// NumTicketsLeft is 0 for unknown events and when Redis cannot answer.
func (i *Inventory) NumTicketsLeft(ctx context.Context, eventID, _ int64) int {
	left, err := i.client.HGet(ctx, i.eventKey(eventID), "left").Int()
	if err != nil {
		i.check("tickets_left", err)
		return 0
	}
	return left
}

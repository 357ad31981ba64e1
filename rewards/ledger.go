// ABOUTME: Badger-backed append-only points ledger for engagement rewards
// ABOUTME: Best-effort sink; demo contacts are filtered before it is invoked
package rewards

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/touchbase/models"
)

// Points awarded per activity type. System-generated events score too:
// revenue is worth the most, status changes nothing.
var pointsByType = map[models.ActivityType]int{
	models.ActivityEmail:        1,
	models.ActivityCall:         3,
	models.ActivityMeeting:      5,
	models.ActivityLinkedin:     1,
	models.ActivitySocial:       1,
	models.ActivityMail:         2,
	models.ActivityText:         1,
	models.ActivityIntroduction: 4,
	models.ActivityRevenue:      10,
	models.ActivityStatusChange: 0,
}

// PointsFor returns the point value of an activity type.
func PointsFor(t models.ActivityType) int {
	return pointsByType[t]
}

// Event is one append-only ledger entry. Removals append a negative
// entry rather than rewriting history.
type Event struct {
	OwnerID    string    `json:"owner_id"`
	ContactID  string    `json:"contact_id"`
	Type       string    `json:"type"`
	Points     int       `json:"points"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Ledger stores reward events in BadgerDB. Keys are ULIDs under a
// per-owner prefix, so iteration yields events in time order.
type Ledger struct {
	db      *badger.DB
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens (or creates) a ledger at dir.
func Open(dir string) (*Ledger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open rewards ledger: %w", err)
	}

	return &Ledger{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// ActivityLogged awards points for a freshly logged activity.
func (l *Ledger) ActivityLogged(_ context.Context, contact *models.Contact, activity *models.Activity) error {
	return l.append(Event{
		OwnerID:    activity.OwnerID,
		ContactID:  contact.ID.String(),
		Type:       string(activity.Type),
		Points:     PointsFor(activity.Type),
		OccurredAt: activity.EffectiveTime(),
	})
}

// ActivityRemoved reverses the award for a deleted activity.
func (l *Ledger) ActivityRemoved(_ context.Context, contact *models.Contact, activity *models.Activity) error {
	return l.append(Event{
		OwnerID:    activity.OwnerID,
		ContactID:  contact.ID.String(),
		Type:       string(activity.Type),
		Points:     -PointsFor(activity.Type),
		OccurredAt: time.Now().UTC(),
	})
}

// Total sums all points for an owner.
func (l *Ledger) Total(ownerID string) (int, error) {
	events, err := l.Events(ownerID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, ev := range events {
		total += ev.Points
	}
	return total, nil
}

// Events returns the owner's ledger entries in time order.
func (l *Ledger) Events(ownerID string) ([]Event, error) {
	prefix := []byte("points/" + ownerID + "/")

	var events []Event
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var ev Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			})
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (l *Ledger) append(ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	key := []byte("points/" + ev.OwnerID + "/" + l.newEventID())
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (l *Ledger) newEventID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy).String()
}

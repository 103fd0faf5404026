package stubapi

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"clinup/pkg/clinup"
)

// PaymentSession is an open checkout for one reservation.
type PaymentSession struct {
	ID            string
	ReservationID clinup.ID
	ProviderID    clinup.ID
	HostID        clinup.ID
	Invitation    bool
	Params        clinup.SheetParams
	// Outcome is what the next status check reports.
	Outcome clinup.PaymentStatus
	Settled bool
}

// Payments holds checkout sessions until they expire.
type Payments struct {
	// DefaultOutcome is reported when no test hook chose one.
	DefaultOutcome clinup.PaymentStatus

	mu    sync.Mutex
	cache *cache.Cache
}

func NewPayments(ttl time.Duration) *Payments {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Payments{
		DefaultOutcome: clinup.PaymentSucceeded,
		cache:          cache.New(ttl, 2*ttl),
	}
}

func paymentKey(id clinup.ID, invitation bool) string {
	if invitation {
		return "invit:" + string(id)
	}
	return "direct:" + string(id)
}

// Open starts (or restarts) the checkout of a reservation and returns the sheet handles.
func (p *Payments) Open(reservationID, hostID, providerID clinup.ID, invitation bool) PaymentSession {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.NewString()
	compact := strings.ReplaceAll(id, "-", "")
	s := PaymentSession{
		ID:            id,
		ReservationID: reservationID,
		ProviderID:    providerID,
		HostID:        hostID,
		Invitation:    invitation,
		Params: clinup.SheetParams{
			PaymentIntent: "pi_" + compact + "_secret_" + compact[:12],
			EphemeralKey:  "ek_test_" + uuid.NewString(),
			CustomerID:    "cus_" + string(hostID),
		},
		Outcome: p.DefaultOutcome,
	}
	p.cache.SetDefault(paymentKey(reservationID, invitation), s)
	return s
}

func (p *Payments) Get(reservationID clinup.ID, invitation bool) (PaymentSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache.Get(paymentKey(reservationID, invitation))
	if !ok {
		return PaymentSession{}, false
	}
	return v.(PaymentSession), true
}

func (p *Payments) MarkSettled(reservationID clinup.ID, invitation bool) {
	p.update(paymentKey(reservationID, invitation), func(s *PaymentSession) { s.Settled = true })
}

// SetOutcome forces the result of the next status checks for every open session of
// the reservation. It reports whether any session was found.
func (p *Payments) SetOutcome(reservationID clinup.ID, outcome clinup.PaymentStatus) bool {
	direct := p.update(paymentKey(reservationID, false), func(s *PaymentSession) { s.Outcome = outcome })
	invit := p.update(paymentKey(reservationID, true), func(s *PaymentSession) { s.Outcome = outcome })
	return direct || invit
}

func (p *Payments) update(key string, fn func(*PaymentSession)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache.Get(key)
	if !ok {
		return false
	}
	s := v.(PaymentSession)
	fn(&s)
	p.cache.SetDefault(key, s)
	return true
}

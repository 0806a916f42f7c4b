package payments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apperr "github.com/phillip/clubify-go/apperr"
	models "github.com/phillip/clubify-go/models"
	store "github.com/phillip/clubify-go/store"
)

// Processor event types handled by Reconcile.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Metadata keys attached to every intent.
const (
	metaType      = "type"
	metaUserEmail = "userEmail"
	metaClubID    = "clubId"
	metaEventID   = "eventId"
)

var errAlreadyRegistered = apperr.Conflict("User is already registered for this event")

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeError     Outcome = "error"
)

// Result describes what one webhook delivery did to the store.
type Result struct {
	EventID   string
	EventType string
	IntentID  string
	Outcome   Outcome
	PaymentID primitive.ObjectID
	// Created is true when the membership or registration was inserted by this delivery.
	Created bool
	Err     error
}

// Recorder counts reconciliation outcomes.
type Recorder interface {
	ObserveWebhook(outcome string)
}

type Orchestrator struct {
	Gateway       Gateway
	Store         *store.Store
	WebhookSecret string
	Currency      string
	Log           *zap.Logger
	Dedupe        Deduper
	Metrics       Recorder
}

type EventIntentInput struct {
	EventID   primitive.ObjectID
	UserEmail string
	Amount    float64
}

type MembershipIntentInput struct {
	ClubID    primitive.ObjectID
	UserEmail string
	Amount    float64
}

type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// ---------------- INTENTS ----------------

func (o *Orchestrator) CreateEventIntent(ctx context.Context, in EventIntentInput) (*IntentResult, error) {
	if err := checkIntentInput(in.UserEmail, in.Amount); err != nil {
		return nil, err
	}
	event, err := o.Store.Events.FindByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	// Refuse before anything is charged.
	email := models.NormalizeEmail(in.UserEmail)
	if _, err := o.Store.Registrations.FindActive(ctx, event.ID, email); err == nil {
		return nil, errAlreadyRegistered
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if event.Full() {
		return nil, apperr.CapacityExceeded("Event is full")
	}

	return o.createIntent(ctx, in.Amount, map[string]string{
		metaType:      models.PaymentTypeEvent,
		metaUserEmail: in.UserEmail,
		metaEventID:   in.EventID.Hex(),
	})
}

func (o *Orchestrator) CreateMembershipIntent(ctx context.Context, in MembershipIntentInput) (*IntentResult, error) {
	if err := checkIntentInput(in.UserEmail, in.Amount); err != nil {
		return nil, err
	}
	if _, err := o.Store.Clubs.FindByID(ctx, in.ClubID); err != nil {
		return nil, err
	}
	return o.createIntent(ctx, in.Amount, map[string]string{
		metaType:      models.PaymentTypeMembership,
		metaUserEmail: in.UserEmail,
		metaClubID:    in.ClubID.Hex(),
	})
}

func checkIntentInput(email string, amount float64) error {
	if email == "" {
		return apperr.Validation("userEmail is required")
	}
	if MinorUnits(amount) <= 0 {
		return apperr.Validation("amount must be greater than zero")
	}
	return nil
}

func (o *Orchestrator) createIntent(ctx context.Context, amount float64, meta map[string]string) (*IntentResult, error) {
	currency := o.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	intent, err := o.Gateway.CreateIntent(ctx, IntentRequest{
		Amount:   MinorUnits(amount),
		Currency: currency,
		Metadata: meta,
	})
	if err != nil {
		return nil, err
	}
	return &IntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

func (o *Orchestrator) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if id == "" {
		return nil, apperr.Validation("paymentIntentId is required")
	}
	return o.Gateway.GetIntent(ctx, id)
}

// ---------------- WEBHOOK ----------------

// VerifyWebhook authenticates a delivery against the shared secret. Nothing
// may be mutated before it succeeds.
func (o *Orchestrator) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if o.WebhookSecret == "" {
		return stripe.Event{}, apperr.New(apperr.ErrInvalidSignature, "Webhook secret not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, o.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return stripe.Event{}, apperr.Wrap(apperr.ErrInvalidSignature, "Webhook signature verification failed", err)
	}
	return event, nil
}

// HandleWebhook verifies, de-duplicates and reconciles one delivery. The
// returned error is non-nil only for a bad signature; reconciliation problems
// are reported in the Result and logged.
func (o *Orchestrator) HandleWebhook(ctx context.Context, payload []byte, signature string) (Result, error) {
	event, err := o.VerifyWebhook(payload, signature)
	if err != nil {
		o.observe(OutcomeError)
		return Result{Outcome: OutcomeError, Err: err}, err
	}

	if o.Dedupe != nil && event.ID != "" {
		seen, err := o.Dedupe.Seen(ctx, event.ID)
		if err != nil {
			o.Log.Warn("webhook dedupe lookup failed", zap.String("event_id", event.ID), zap.Error(err))
		} else if seen {
			res := Result{EventID: event.ID, EventType: string(event.Type), Outcome: OutcomeDuplicate}
			o.observe(res.Outcome)
			return res, nil
		}
	}

	res := o.Reconcile(ctx, event)
	o.observe(res.Outcome)

	if res.Err != nil {
		// Acknowledged anyway: a retry cannot fix these, an operator can.
		o.Log.Error("webhook reconciliation failed",
			zap.String("event_id", res.EventID),
			zap.String("event_type", res.EventType),
			zap.String("intent_id", res.IntentID),
			zap.Bool("refund_required", errors.Is(res.Err, apperr.ErrCapacityExceeded)),
			zap.Error(res.Err),
		)
		return res, nil
	}

	o.Log.Info("webhook reconciled",
		zap.String("event_id", res.EventID),
		zap.String("event_type", res.EventType),
		zap.String("outcome", string(res.Outcome)),
		zap.Bool("created", res.Created),
	)
	if o.Dedupe != nil && event.ID != "" {
		if err := o.Dedupe.Mark(ctx, event.ID); err != nil {
			o.Log.Warn("webhook dedupe mark failed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
	return res, nil
}

func (o *Orchestrator) observe(outcome Outcome) {
	if o.Metrics != nil {
		o.Metrics.ObserveWebhook(string(outcome))
	}
}

// Reconcile applies one verified event. Replaying the same event leaves the
// store unchanged after the first successful application.
func (o *Orchestrator) Reconcile(ctx context.Context, event stripe.Event) Result {
	res := Result{EventID: event.ID, EventType: string(event.Type)}

	switch string(event.Type) {
	case EventIntentSucceeded, EventIntentFailed:
	default:
		res.Outcome = OutcomeIgnored
		return res
	}

	if event.Data == nil {
		return res.fail(apperr.Validation("event carries no payment intent"))
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return res.fail(apperr.Wrap(apperr.ErrValidation, "malformed payment intent", err))
	}
	if pi.ID == "" {
		return res.fail(apperr.Validation("payment intent id missing"))
	}
	res.IntentID = pi.ID

	if string(event.Type) == EventIntentFailed {
		if _, err := o.Store.Payments.SetStatusByIntent(ctx, pi.ID, models.PaymentFailed); err != nil {
			return res.fail(err)
		}
		res.Outcome = OutcomeFailed
		return res
	}
	return o.succeeded(ctx, res, &pi)
}

func (r Result) fail(err error) Result {
	r.Outcome = OutcomeError
	r.Err = err
	return r
}

type intentMeta struct {
	kind    string
	email   string
	clubID  primitive.ObjectID
	eventID primitive.ObjectID
}

func parseMeta(meta map[string]string) (intentMeta, error) {
	m := intentMeta{kind: meta[metaType], email: models.NormalizeEmail(meta[metaUserEmail])}
	if m.email == "" {
		return m, apperr.Validation("intent metadata missing userEmail")
	}

	var err error
	switch m.kind {
	case models.PaymentTypeMembership:
		m.clubID, err = primitive.ObjectIDFromHex(meta[metaClubID])
	case models.PaymentTypeEvent:
		m.eventID, err = primitive.ObjectIDFromHex(meta[metaEventID])
	default:
		return m, apperr.Validation("intent metadata has unknown type")
	}
	if err != nil {
		return m, apperr.Wrap(apperr.ErrValidation, "intent metadata has malformed id", err)
	}
	return m, nil
}

func (o *Orchestrator) succeeded(ctx context.Context, res Result, pi *stripe.PaymentIntent) Result {
	meta, metaErr := parseMeta(pi.Metadata)

	payment, err := o.completePayment(ctx, pi, meta, metaErr)
	if err != nil {
		return res.fail(err)
	}
	res.PaymentID = payment.ID

	if metaErr != nil {
		return res.fail(metaErr)
	}

	switch meta.kind {
	case models.PaymentTypeMembership:
		res.Created, err = o.ensureMembership(ctx, meta, payment.ID)
	case models.PaymentTypeEvent:
		res.Created, err = o.ensureRegistration(ctx, meta, payment.ID)
	}
	if err != nil {
		return res.fail(err)
	}
	res.Outcome = OutcomeCompleted
	return res
}

// completePayment marks the intent's payment row completed, creating it from
// the metadata when the client never recorded one.
func (o *Orchestrator) completePayment(ctx context.Context, pi *stripe.PaymentIntent, meta intentMeta, metaErr error) (*models.Payment, error) {
	payment, err := o.Store.Payments.FindByIntentID(ctx, pi.ID)
	switch {
	case err == nil:
		if payment.Status != models.PaymentCompleted {
			if err := o.Store.Payments.UpdateStatus(ctx, payment.ID, models.PaymentCompleted); err != nil {
				return nil, err
			}
			payment.Status = models.PaymentCompleted
		}
		return payment, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	case metaErr != nil:
		return nil, metaErr
	}

	now := time.Now()
	payment = &models.Payment{
		UserEmail:             meta.email,
		Amount:                MajorUnits(pi.Amount),
		Currency:              string(pi.Currency),
		Type:                  meta.kind,
		StripePaymentIntentID: pi.ID,
		Status:                models.PaymentCompleted,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if meta.kind == models.PaymentTypeMembership {
		payment.ClubID = &meta.clubID
	} else {
		payment.EventID = &meta.eventID
	}

	err = o.Store.Payments.Insert(ctx, payment)
	if errors.Is(err, apperr.ErrConflict) {
		// A concurrent delivery inserted it first.
		existing, findErr := o.Store.Payments.FindByIntentID(ctx, pi.ID)
		if findErr != nil {
			return nil, findErr
		}
		if existing.Status != models.PaymentCompleted {
			if err := o.Store.Payments.UpdateStatus(ctx, existing.ID, models.PaymentCompleted); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ensureMembership makes the user an active member of the club, inserting the
// row or re-activating a pending, expired or cancelled one.
func (o *Orchestrator) ensureMembership(ctx context.Context, meta intentMeta, paymentID primitive.ObjectID) (bool, error) {
	existing, err := o.Store.Memberships.FindByUserAndClub(ctx, meta.email, meta.clubID)
	if err == nil {
		if existing.Status != models.MembershipActive {
			return false, o.Store.Memberships.Activate(ctx, existing.ID, paymentID)
		}
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	now := time.Now()
	m := &models.Membership{
		UserEmail: meta.email,
		ClubID:    meta.clubID,
		Status:    models.MembershipActive,
		PaymentID: &paymentID,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	err = o.Store.Memberships.Insert(ctx, m)
	if errors.Is(err, apperr.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

// ensureRegistration registers the user for the event. The seat limit still
// holds: when the event filled up while the payment was in flight, nothing is
// inserted and the error asks for a refund.
func (o *Orchestrator) ensureRegistration(ctx context.Context, meta intentMeta, paymentID primitive.ObjectID) (bool, error) {
	_, err := o.Store.Registrations.FindActive(ctx, meta.eventID, meta.email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	event, err := o.Store.Events.FindByID(ctx, meta.eventID)
	if err != nil {
		return false, err
	}

	now := time.Now()
	r := &models.EventRegistration{
		EventID:      meta.eventID,
		UserEmail:    meta.email,
		ClubID:       event.ClubID,
		Status:       models.RegistrationRegistered,
		PaymentID:    &paymentID,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	err = o.Store.AddRegistration(ctx, r)
	switch {
	case errors.Is(err, apperr.ErrConflict):
		return false, nil
	case errors.Is(err, apperr.ErrCapacityExceeded):
		return false, apperr.Wrap(apperr.ErrCapacityExceeded, "event is full, payment "+paymentID.Hex()+" needs a refund", err)
	}
	return err == nil, err
}

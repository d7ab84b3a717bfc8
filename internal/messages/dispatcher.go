package messages

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/domain/operr"
	"github.com/example/contentapi/internal/platform/logger"
)

// Envelope is the transport-agnostic request shape: a message type tag plus
// its payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handlerFunc runs one decoded message. Query handlers receive a nil tx and
// read from the pool; mutation handlers receive the message's transaction.
type handlerFunc func(ctx context.Context, tx *gorm.DB, payload json.RawMessage) (interface{}, error)

type handlerEntry struct {
	mutation bool
	run      handlerFunc
}

// Dispatcher routes envelopes to their registered handler. Mutations run
// inside exactly one transaction: handler failure rolls everything back,
// including appended events; success commits before the response returns.
type Dispatcher struct {
	runner   store.TxRunner
	handlers map[string]handlerEntry
	log      *logger.Logger
}

func NewDispatcher(runner store.TxRunner, queries *QueryService, mutations *MutationService, baseLog *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		runner:   runner,
		handlers: make(map[string]handlerEntry),
		log:      baseLog.With("service", "Dispatcher"),
	}
	registerQueries(d, queries)
	registerMutations(d, mutations)
	return d
}

func (d *Dispatcher) registerQuery(name string, run handlerFunc) {
	d.handlers[name] = handlerEntry{mutation: false, run: run}
}

func (d *Dispatcher) registerMutation(name string, run handlerFunc) {
	d.handlers[name] = handlerEntry{mutation: true, run: run}
}

// Dispatch executes one message and returns its response body.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (interface{}, error) {
	entry, ok := d.handlers[env.Type]
	if !ok {
		return nil, operr.BadRequestf("unknown message type %q", env.Type)
	}

	if !entry.mutation {
		return entry.run(ctx, nil, env.Payload)
	}

	var out interface{}
	err := d.runner.InTx(ctx, func(tx *gorm.DB) error {
		var handlerErr error
		out, handlerErr = entry.run(ctx, tx, env.Payload)
		return handlerErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decode unmarshals a payload into its expected shape, turning malformed
// input into a bad request that names the message type.
func decode(messageType string, raw json.RawMessage, into interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return operr.BadRequestf("invalid payload for %s: %s", messageType, err.Error())
	}
	return nil
}

// Package registry holds the closed set of action factories and decodes
// serialized action lists into configured actions.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/dukex/dealflow/pkg/models"
	"github.com/dukex/dealflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
	schemas         map[string]*gojsonschema.Schema
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		actionFactories: make(map[string]protocol.ActionFactory),
		schemas:         make(map[string]*gojsonschema.Schema),
	}
}

// RegisterAction adds a factory. The factory's schema is compiled once; an
// invalid schema is a programming error and panics.
func (r *Registry) RegisterAction(actionFactory protocol.ActionFactory) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(actionFactory.Schema()))
	if err != nil {
		panic(fmt.Sprintf("invalid schema for action %q: %v", actionFactory.ID(), err))
	}

	r.actionFactories[actionFactory.ID()] = actionFactory
	r.schemas[actionFactory.ID()] = schema
}

// ActionFactories returns the registered factories ordered by type.
func (r *Registry) ActionFactories() []protocol.ActionFactory {
	ids := make([]string, 0, len(r.actionFactories))
	for id := range r.actionFactories {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	factories := make([]protocol.ActionFactory, 0, len(ids))
	for _, id := range ids {
		factories = append(factories, r.actionFactories[id])
	}

	return factories
}

// HealthCheck reports whether every action type is registered.
func (r *Registry) HealthCheck() error {
	for _, actionType := range models.ActionTypes() {
		if _, ok := r.actionFactories[string(actionType)]; !ok {
			return fmt.Errorf("action type %q not registered", actionType)
		}
	}

	return nil
}

// CreateAction validates config against the type's schema and creates the action.
func (r *Registry) CreateAction(actionType string, config json.RawMessage) (protocol.Action, error) {
	return r.decode(models.ActionSpec{Type: models.ActionType(actionType), Config: config}, 0)
}

// DecodedAction is one entry of a decoded action list.
type DecodedAction struct {
	Index  int
	Type   models.ActionType
	Action protocol.Action
}

// DecodeError is an entry of a stored list that could not be decoded.
type DecodeError struct {
	Index int
	Type  models.ActionType
	Err   error
}

// DecodeList strictly decodes an action list: the first invalid entry fails
// the whole list. Used when automations are created.
func (r *Registry) DecodeList(raw json.RawMessage) ([]DecodedAction, error) {
	elements, err := parseSpecs(raw)
	if err != nil {
		return nil, err
	}

	actions := make([]DecodedAction, 0, len(elements))

	for i, element := range elements {
		spec, action, err := r.decodeElement(element, i)
		if err != nil {
			return nil, err
		}

		actions = append(actions, DecodedAction{Index: i, Type: spec.Type, Action: action})
	}

	return actions, nil
}

// DecodeStored decodes a persisted action list leniently. Entries with an
// unknown type or an invalid configuration are logged, returned as
// DecodeErrors and skipped; the remaining actions keep their order. An error
// is returned only when the list itself is malformed.
func (r *Registry) DecodeStored(ctx context.Context, raw json.RawMessage, logger *slog.Logger) ([]DecodedAction, []DecodeError, error) {
	elements, err := parseSpecs(raw)
	if err != nil {
		return nil, nil, err
	}

	actions := make([]DecodedAction, 0, len(elements))
	failures := make([]DecodeError, 0)

	for i, element := range elements {
		spec, action, err := r.decodeElement(element, i)
		if err != nil {
			logger.WarnContext(ctx, "skipping undecodable action",
				"action_index", i,
				"action_type", string(spec.Type),
				"error", err,
			)

			failures = append(failures, DecodeError{Index: i, Type: spec.Type, Err: err})

			continue
		}

		actions = append(actions, DecodedAction{Index: i, Type: spec.Type, Action: action})
	}

	return actions, failures, nil
}

func (r *Registry) decode(spec models.ActionSpec, index int) (protocol.Action, error) {
	factory, ok := r.actionFactories[string(spec.Type)]
	if !ok {
		return nil, &UnknownTypeError{Type: string(spec.Type), Index: index}
	}

	config := spec.Config
	if len(bytes.TrimSpace(config)) == 0 || bytes.Equal(bytes.TrimSpace(config), []byte("null")) {
		config = json.RawMessage(`{}`)
	}

	result, err := r.schemas[factory.ID()].Validate(gojsonschema.NewBytesLoader(config))
	if err != nil {
		return nil, &ValidationError{Type: factory.ID(), Index: index, Details: []string{err.Error()}}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			details = append(details, resultErr.String())
		}

		slices.Sort(details)

		return nil, &ValidationError{Type: factory.ID(), Index: index, Details: details}
	}

	action, err := factory.Create(config)
	if err != nil {
		return nil, &ValidationError{Type: factory.ID(), Index: index, Details: []string{err.Error()}}
	}

	return action, nil
}

func (r *Registry) decodeElement(element json.RawMessage, index int) (models.ActionSpec, protocol.Action, error) {
	spec, err := parseSpec(element, index)
	if err != nil {
		return spec, nil, err
	}

	action, err := r.decode(spec, index)

	return spec, action, err
}

// parseSpecs splits the list into its elements so that one bad entry does not
// hide the others.
func parseSpecs(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMalformedActionList
	}

	var elements []json.RawMessage

	err := json.Unmarshal(trimmed, &elements)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedActionList, err)
	}

	return elements, nil
}

func parseSpec(element json.RawMessage, index int) (models.ActionSpec, error) {
	var spec models.ActionSpec

	trimmed := bytes.TrimSpace(element)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return spec, &ValidationError{Index: index, Details: []string{"action must be a JSON object"}}
	}

	err := json.Unmarshal(trimmed, &spec)
	if err != nil {
		return spec, &ValidationError{Index: index, Details: []string{err.Error()}}
	}

	return spec, nil
}

package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Harshitk-cp/stagecraft/internal/domain"
	"github.com/Harshitk-cp/stagecraft/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// World owns the character and location registries and coordinates the
// epistemic layers around them: movement is recorded as an objective fact,
// perceived by whoever is present, and believed by each observer. Nothing
// outside this service writes facts.
type World struct {
	mu     sync.RWMutex
	logger *zap.Logger

	ledger     domain.Ledger
	artifacts  domain.ArtifactStore
	beliefs    *BeliefService
	perception *PerceptionService

	characters map[string]*domain.Character
	locations  map[string]*domain.Location
}

// NewWorld wires the coordination layer over the epistemic services.
func NewWorld(ledger domain.Ledger, artifacts domain.ArtifactStore, beliefs *BeliefService, perception *PerceptionService, logger *zap.Logger) *World {
	return &World{
		logger:     logger,
		ledger:     ledger,
		artifacts:  artifacts,
		beliefs:    beliefs,
		perception: perception,
		characters: make(map[string]*domain.Character),
		locations:  make(map[string]*domain.Location),
	}
}

// AddLocation registers a place.
func (w *World) AddLocation(loc *domain.Location) error {
	if loc == nil || loc.ID == "" {
		return fmt.Errorf("add location: missing id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.locations[loc.ID]; exists {
		return fmt.Errorf("add location %s: already registered", loc.ID)
	}
	w.locations[loc.ID] = loc.Clone()
	return nil
}

// AddCharacter registers an actor at their starting location and records
// the placement as an objective fact observed by everyone already there.
func (w *World) AddCharacter(tick int64, c *domain.Character) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("add character: missing id")
	}

	w.mu.Lock()
	if _, exists := w.characters[c.ID]; exists {
		w.mu.Unlock()
		return fmt.Errorf("add character %s: already registered", c.ID)
	}
	loc, ok := w.locations[c.LocationID]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("add character %s: location %s: %w", c.ID, c.LocationID, store.ErrNotFound)
	}

	reg := c.Clone()
	reg.Active = true
	w.characters[c.ID] = reg
	loc.Occupants = append(loc.Occupants, c.ID)
	observers := append([]string(nil), loc.Occupants...)
	w.mu.Unlock()

	fact, err := w.ledger.Record(tick, domain.FactCharacterMoved, c.ID,
		map[string]any{"destination": c.LocationID, "origin": ""}, observers)
	if err != nil {
		return fmt.Errorf("record placement of %s: %w", c.ID, err)
	}
	if _, err := w.perception.Observe(fact); err != nil {
		return fmt.Errorf("observe placement of %s: %w", c.ID, err)
	}
	return nil
}

// RestoreCharacter re-registers an actor after a ledger replay, placing
// them at their last recorded location. No new fact is recorded; the move
// history already exists.
func (w *World) RestoreCharacter(c *domain.Character) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("restore character: missing id")
	}

	locID := c.LocationID
	if last, err := w.ledger.LocationAt(c.ID, int64(1)<<62); err == nil {
		locID = last
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.characters[c.ID]; exists {
		return fmt.Errorf("restore character %s: already registered", c.ID)
	}
	loc, ok := w.locations[locID]
	if !ok {
		return fmt.Errorf("restore character %s: location %s: %w", c.ID, locID, store.ErrNotFound)
	}

	reg := c.Clone()
	reg.LocationID = locID
	reg.Active = true
	w.characters[c.ID] = reg
	loc.Occupants = append(loc.Occupants, c.ID)
	return nil
}

// MoveCharacter relocates a character. The move becomes an objective fact
// whose observers are everyone at the origin plus everyone at the
// destination, and each observer forms a fully trusted belief from their
// own eyes.
func (w *World) MoveCharacter(tick int64, characterID, destinationID string) error {
	w.mu.Lock()
	c, ok := w.characters[characterID]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("move character %s: %w", characterID, store.ErrNotFound)
	}
	dest, ok := w.locations[destinationID]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("move character %s to %s: %w", characterID, destinationID, store.ErrNotFound)
	}

	origin := c.LocationID
	observerSet := map[string]bool{characterID: true}
	if from, ok := w.locations[origin]; ok {
		for _, occ := range from.Occupants {
			observerSet[occ] = true
		}
		from.Occupants = removeString(from.Occupants, characterID)
	}
	for _, occ := range dest.Occupants {
		observerSet[occ] = true
	}
	dest.Occupants = append(dest.Occupants, characterID)
	c.LocationID = destinationID
	c.Destination = ""
	c.State = domain.CharIdle

	observers := make([]string, 0, len(observerSet))
	for id := range observerSet {
		observers = append(observers, id)
	}
	sort.Strings(observers)
	w.mu.Unlock()

	fact, err := w.ledger.Record(tick, domain.FactCharacterMoved, characterID,
		map[string]any{"destination": destinationID, "origin": origin}, observers)
	if err != nil {
		return fmt.Errorf("record move of %s: %w", characterID, err)
	}
	if _, err := w.perception.Observe(fact); err != nil {
		return fmt.Errorf("observe move of %s: %w", characterID, err)
	}

	w.logger.Debug("character moved",
		zap.String("character", characterID),
		zap.String("from", origin),
		zap.String("to", destinationID),
		zap.Int64("tick", tick))

	return nil
}

// SetCharacterState changes what a character is doing and records it.
func (w *World) SetCharacterState(tick int64, characterID string, state domain.CharacterState) error {
	w.mu.Lock()
	c, ok := w.characters[characterID]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("set state of %s: %w", characterID, store.ErrNotFound)
	}
	c.State = state
	var observers []string
	if loc, ok := w.locations[c.LocationID]; ok {
		observers = append([]string(nil), loc.Occupants...)
	}
	w.mu.Unlock()

	fact, err := w.ledger.Record(tick, domain.FactCharacterStateChange, characterID,
		map[string]any{"state": string(state)}, observers)
	if err != nil {
		return fmt.Errorf("record state of %s: %w", characterID, err)
	}
	if _, err := w.perception.Observe(fact); err != nil {
		return fmt.Errorf("observe state of %s: %w", characterID, err)
	}
	return nil
}

// ObjectiveLocation returns a character's true location. This is engine
// truth from the fact ledger; characters never see it.
func (w *World) ObjectiveLocation(characterID string) (string, error) {
	w.mu.RLock()
	c, ok := w.characters[characterID]
	w.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("objective location of %s: %w", characterID, store.ErrNotFound)
	}
	return c.LocationID, nil
}

// BelievedLocation returns where actor thinks about is, derived from the
// highest-confidence belief actor holds over a location-bearing artifact
// about the subject. Returns ErrNotFound when the actor believes nothing
// relevant.
func (w *World) BelievedLocation(actor, about string) (string, float64, error) {
	best := ""
	bestConfidence := -1.0

	for _, artifact := range w.artifacts.KnownBy(actor, about, false) {
		loc := locationClaim(artifact)
		if loc == "" {
			continue
		}
		belief, err := w.beliefs.Belief(actor, artifact.ID)
		if err != nil {
			continue
		}
		// >= so that on equal confidence the newer artifact wins; KnownBy
		// returns creation order.
		if belief.Confidence >= bestConfidence {
			best = loc
			bestConfidence = belief.Confidence
		}
	}

	if best == "" {
		return "", 0, fmt.Errorf("believed location of %s by %s: %w", about, actor, store.ErrNotFound)
	}
	return best, bestConfidence, nil
}

func locationClaim(a *domain.Artifact) string {
	if dest, ok := a.Data["destination"].(string); ok {
		return dest
	}
	if loc, ok := a.Data["location"].(string); ok {
		return loc
	}
	return ""
}

// KnownArtifacts returns everything an actor knows, optionally about one
// subject. This is the actor's complete legitimate view of the world.
func (w *World) KnownArtifacts(actor, subject string) []*domain.Artifact {
	return w.artifacts.KnownBy(actor, subject, false)
}

// Character returns a copy of a registered character.
func (w *World) Character(id string) (*domain.Character, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.characters[id]
	if !ok {
		return nil, fmt.Errorf("character %s: %w", id, store.ErrNotFound)
	}
	return c.Clone(), nil
}

// Characters returns copies of all registered characters, ordered by id.
func (w *World) Characters() []*domain.Character {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]string, 0, len(w.characters))
	for id := range w.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*domain.Character, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.characters[id].Clone())
	}
	return out
}

// Location returns a copy of a registered location.
func (w *World) Location(id string) (*domain.Location, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, ok := w.locations[id]
	if !ok {
		return nil, fmt.Errorf("location %s: %w", id, store.ErrNotFound)
	}
	return loc.Clone(), nil
}

// Locations returns copies of all registered locations, ordered by id.
func (w *World) Locations() []*domain.Location {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]string, 0, len(w.locations))
	for id := range w.locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*domain.Location, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.locations[id].Clone())
	}
	return out
}

// Occupants returns who is at a location right now.
func (w *World) Occupants(locationID string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, ok := w.locations[locationID]
	if !ok {
		return nil
	}
	return append([]string(nil), loc.Occupants...)
}

// ActionToEvent converts an external decision into a schedulable event.
// The event fires on the next tick; its duration comes from the action.
func (w *World) ActionToEvent(tick int64, characterID string, action *domain.Action) (*domain.Event, error) {
	if action == nil {
		return nil, fmt.Errorf("action for %s: nil action", characterID)
	}

	w.mu.RLock()
	c, ok := w.characters[characterID]
	var locationID string
	if ok {
		locationID = c.LocationID
	}
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("action for %s: %w", characterID, store.ErrNotFound)
	}

	eventType := domain.EventCharacterAction
	title := fmt.Sprintf("%s: %s", characterID, action.Type)
	switch action.Type {
	case domain.ActionTravel:
		eventType = domain.EventCharacterTravel
		locationID = action.Target
		title = fmt.Sprintf("%s travels to %s", characterID, action.Target)
	case domain.ActionInteract:
		eventType = domain.EventCharacterInteraction
		title = fmt.Sprintf("%s interacts with %s", characterID, action.Target)
	}

	return &domain.Event{
		ID:            "event_" + uuid.New().String(),
		Type:          eventType,
		Status:        domain.EventScheduled,
		ScheduledTick: tick + 1,
		DurationTicks: action.Duration,
		LocationID:    locationID,
		Participants:  []string{characterID},
		Title:         title,
		Description:   action.Reasoning,
		Priority:      action.Priority,
	}, nil
}

// ExecuteEvent applies an event's effects when it fires. Travel moves the
// actor; interactions and generic actions are recorded as event facts
// observed by everyone present.
func (w *World) ExecuteEvent(event *domain.Event, tick int64) error {
	switch event.Type {
	case domain.EventCharacterTravel:
		if len(event.Participants) == 0 {
			return fmt.Errorf("execute event %s: no traveler", event.ID)
		}
		return w.MoveCharacter(tick, event.Participants[0], event.LocationID)
	default:
		observers := w.Occupants(event.LocationID)
		fact, err := w.ledger.Record(tick, domain.FactEventOccurred, event.ID,
			map[string]any{
				"title":    event.Title,
				"type":     string(event.Type),
				"location": event.LocationID,
			}, observers)
		if err != nil {
			return fmt.Errorf("record event %s: %w", event.ID, err)
		}
		if _, err := w.perception.Observe(fact); err != nil {
			return fmt.Errorf("observe event %s: %w", event.ID, err)
		}
		return nil
	}
}

// MarkActed stamps when a character last took an action.
func (w *World) MarkActed(characterID string, tick int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.characters[characterID]; ok {
		c.LastActionTick = tick
	}
}

// WorldStats reports registry sizes for operators.
type WorldStats struct {
	Characters int `json:"characters"`
	Locations  int `json:"locations"`
}

// Stats returns current registry counters.
func (w *World) Stats() WorldStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorldStats{Characters: len(w.characters), Locations: len(w.locations)}
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

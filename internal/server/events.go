package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/events"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

// ingestEvents accepts a batch of lifecycle events. Each event first updates
// the registry mirror, then is forwarded to the serialized dispatcher that
// owns the activity map. The batch is rejected whole on an unknown kind.
func (s *Server) ingestEvents(w http.ResponseWriter, r *http.Request) {
	var batch []tabEvent
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed events payload: "+err.Error())
		return
	}

	parsed := make([]events.Event, 0, len(batch))
	for i, ev := range batch {
		out, err := parseEvent(ev)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("event %d: %v", i, err))
			return
		}
		parsed = append(parsed, out)
	}

	for _, ev := range parsed {
		s.mirror(ev)
		s.sus.Publish(ev)
	}
	writeJSON(w, http.StatusOK, eventsResponse{Accepted: len(parsed)})
}

func parseEvent(ev tabEvent) (events.Event, error) {
	switch ev.Kind {
	case "activated":
		return events.Event{Kind: events.KindActivated, ID: model.TabID(ev.ID)}, nil
	case "created":
		if ev.Tab == nil {
			return events.Event{}, fmt.Errorf("created event without tab")
		}
		tab := ev.Tab.toTab()
		return events.Event{Kind: events.KindCreated, ID: tab.ID, Tab: tab}, nil
	case "updated":
		return events.Event{
			Kind:   events.KindUpdated,
			ID:     model.TabID(ev.ID),
			Change: model.TabChange{Audible: ev.Audible, URL: ev.URL},
		}, nil
	case "removed":
		return events.Event{Kind: events.KindRemoved, ID: model.TabID(ev.ID)}, nil
	}
	return events.Event{}, fmt.Errorf("unknown event kind %q", ev.Kind)
}

func (s *Server) mirror(ev events.Event) {
	switch ev.Kind {
	case events.KindActivated:
		s.registry.SetActive(ev.ID)
	case events.KindCreated:
		s.registry.Upsert(ev.Tab)
	case events.KindUpdated:
		s.registry.Apply(ev.ID, ev.Change)
	case events.KindRemoved:
		s.registry.Remove(ev.ID)
	}
}

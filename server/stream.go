package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// eventStream writes one JSON event per line and flushes after each.
type eventStream struct {
	ctx     context.Context
	enc     *json.Encoder
	flusher http.Flusher
}

func newEventStream(ctx context.Context, w http.ResponseWriter) *eventStream {
	f, _ := w.(http.Flusher)
	return &eventStream{ctx: ctx, enc: json.NewEncoder(w), flusher: f}
}

// Emit fails once the client has disconnected or a write fails.
func (s *eventStream) Emit(ev models.ProgressEvent) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if err := s.enc.Encode(ev); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

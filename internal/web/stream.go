package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	streamPollInterval = 2 * time.Second
	streamKeepAlive    = 20 * time.Second
)

// sseWriter frames server-sent events and flushes each one.
type sseWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &sseWriter{w: w, f: f}, true
}

// event writes one event; an id of 0 is omitted.
func (s *sseWriter) event(id uint64, name string, data []byte) error {
	var b strings.Builder
	if id > 0 {
		b.WriteString("id: " + strconv.FormatUint(id, 10) + "\n")
	}
	b.WriteString("event: " + name + "\n")
	b.WriteString("data: ")
	b.Write(data)
	b.WriteString("\n\n")
	return s.write(b.String())
}

// comment keeps idle connections open through proxies.
func (s *sseWriter) comment(text string) error {
	return s.write(": " + text + "\n\n")
}

func (s *sseWriter) write(frame string) error {
	if _, err := io.WriteString(s.w, frame); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// handleBetStream is an SSE feed of stored bets. Reconnecting clients resume after Last-Event-ID.
func (s *Server) handleBetStream(w http.ResponseWriter, r *http.Request) {
	out, ok := newSSEWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	cursor := s.parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	catchUp := func() error {
		records, err := s.store.After(r.Context(), cursor)
		if err != nil {
			return err
		}
		for _, rec := range records {
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := out.event(rec.ID, "bet", payload); err != nil {
				return err
			}
			cursor = rec.ID
		}
		return nil
	}

	if err := catchUp(); err != nil {
		s.logger.Error("bet stream initial load", zap.Error(err))
		http.Error(w, "failed to load bets", http.StatusInternalServerError)
		return
	}
	if cursor == 0 {
		if err := out.event(0, "no_data", []byte("{}")); err != nil {
			return
		}
	}

	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()
	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if err := out.comment("ping"); err != nil {
				return
			}
		case <-poll.C:
			if err := catchUp(); err != nil {
				if r.Context().Err() != nil {
					return
				}
				s.logger.Warn("bet stream poll", zap.Error(err))
			}
		}
	}
}

// parseLastEventID prefers the header; the query parameter allows manual resumes.
func (s *Server) parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		s.logger.Warn("invalid last event id", zap.String("id", idStr), zap.Error(err))
		return 0
	}
	return id
}

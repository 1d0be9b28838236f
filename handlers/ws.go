package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/LovationAdmin/anggaran-api/autosave"
	"github.com/LovationAdmin/anggaran-api/models"
	"github.com/LovationAdmin/anggaran-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"go.uber.org/zap"
)

const (
	channelBudget       = "budget"
	channelImprestDraft = "imprest_draft"

	draftSaveTimeout = 10 * time.Second
)

// DraftStore persists imprest drafts sent over the autosave socket.
// UpdateDraft must refuse funds that are no longer drafts.
type DraftStore interface {
	Create(ctx context.Context, req models.ImprestRequest) (*models.ImprestFund, error)
	UpdateDraft(ctx context.Context, id string, req models.ImprestRequest) (*models.ImprestFund, error)
}

type WSHandler struct {
	M        *melody.Melody
	drafts   DraftStore
	autosave *autosave.Debouncer
}

// draftMessage is an imprest draft as typed in the form. ID resumes editing a
// draft saved earlier.
type draftMessage struct {
	ID string `json:"id"`
	models.ImprestRequest
}

type draftReply struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

func NewWSHandler(drafts DraftStore, autosaveDelay time.Duration) *WSHandler {
	m := melody.New()
	m.Config.MaxMessageSize = 1024 * 1024

	// keep-alive for proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &WSHandler{
		M:        m,
		drafts:   drafts,
		autosave: autosave.NewDebouncer(autosaveDelay),
	}

	m.HandleConnect(func(s *melody.Session) {
		channel, key := sessionChannel(s)
		utils.LogWebSocket("client connected", channel, key)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		channel, key := sessionChannel(s)
		if channel == channelImprestDraft {
			// save the last edit instead of dropping it
			h.autosave.Flush(key)
		}
		utils.LogWebSocket("client disconnected", channel, key)
	})
	m.HandleError(func(s *melody.Session, err error) {
		channel, key := sessionChannel(s)
		utils.Log.Warn("websocket error",
			zap.String("channel", channel),
			zap.String("key", utils.MaskID(key)),
			zap.Error(err))
	})
	m.HandleMessage(h.handleMessage)

	return h
}

// HandleBudgetWS subscribes the client to change notifications of one budget.
func (h *WSHandler) HandleBudgetWS(c *gin.Context) {
	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]any{
		"channel": channelBudget,
		"key":     c.Param("id"),
	})
	if err != nil {
		utils.Log.Warn("failed to upgrade websocket", zap.Error(err))
	}
}

// HandleDraftWS opens an autosave session for imprest drafts.
func (h *WSHandler) HandleDraftWS(c *gin.Context) {
	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]any{
		"channel":   channelImprestDraft,
		"key":       uuid.New().String(),
		"save_lock": &sync.Mutex{},
	})
	if err != nil {
		utils.Log.Warn("failed to upgrade websocket", zap.Error(err))
	}
}

// BroadcastUpdate signals every client watching budgetID.
func (h *WSHandler) BroadcastUpdate(budgetID, updateType string) {
	msg, err := json.Marshal(gin.H{"type": updateType, "budget_id": budgetID})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		channel, key := sessionChannel(s)
		return channel == channelBudget && key == budgetID
	})
	if err != nil {
		utils.Log.Warn("failed to broadcast budget update",
			zap.String("budget_id", utils.MaskID(budgetID)),
			zap.Error(err))
	}
}

// Close saves pending drafts and disconnects every client.
func (h *WSHandler) Close() error {
	h.autosave.Drain()
	return h.M.Close()
}

func (h *WSHandler) handleMessage(s *melody.Session, raw []byte) {
	channel, key := sessionChannel(s)
	if channel != channelImprestDraft {
		return
	}

	var msg draftMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		writeReply(s, draftReply{Type: "draft_error", Error: "invalid draft: " + err.Error()})
		return
	}
	if msg.ID != "" {
		s.Set("draft_id", msg.ID)
	}
	if !draftReady(&msg.ImprestRequest) {
		// nothing worth saving yet; drop an older pending save too
		h.autosave.Cancel(key)
		return
	}

	req := msg.ImprestRequest
	h.autosave.Schedule(key, func() {
		id, err := h.saveDraft(s, req)
		if err != nil {
			utils.Log.Warn("draft autosave failed", zap.Error(err))
			writeReply(s, draftReply{Type: "draft_error", Error: err.Error()})
			return
		}
		writeReply(s, draftReply{Type: "draft_saved", ID: id})
	})
}

// saveDraft creates the session's draft on the first save and updates that
// same draft on every later one. Saves of one session never overlap.
func (h *WSHandler) saveDraft(s *melody.Session, req models.ImprestRequest) (string, error) {
	if v, ok := s.Get("save_lock"); ok {
		mu := v.(*sync.Mutex)
		mu.Lock()
		defer mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), draftSaveTimeout)
	defer cancel()

	req.Status = models.ImprestStatusDraft
	if id, ok := s.Get("draft_id"); ok {
		fund, err := h.drafts.UpdateDraft(ctx, id.(string), req)
		if err != nil {
			return "", err
		}
		return fund.ID, nil
	}

	fund, err := h.drafts.Create(ctx, req)
	if err != nil {
		return "", err
	}
	s.Set("draft_id", fund.ID)
	return fund.ID, nil
}

// draftReady reports whether a draft is complete enough to autosave: a
// kelompok kegiatan and at least one item, every item complete.
func draftReady(req *models.ImprestRequest) bool {
	return strings.TrimSpace(req.KelompokKegiatan) != "" &&
		len(req.Items) > 0 &&
		req.ItemsComplete()
}

func writeReply(s *melody.Session, reply draftReply) {
	msg, err := json.Marshal(reply)
	if err != nil {
		return
	}
	// the session may already be closed when a flushed save finishes
	_ = s.Write(msg)
}

func sessionChannel(s *melody.Session) (channel, key string) {
	if v, ok := s.Get("channel"); ok {
		channel, _ = v.(string)
	}
	if v, ok := s.Get("key"); ok {
		key, _ = v.(string)
	}
	return channel, key
}

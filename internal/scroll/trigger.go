package scroll

import "github.com/devnullvoid/insightview/pkg/api/interfaces"

// effectHandler turns intents into scroll requests on the latest viewport.
// Intents are never queued or coalesced.
type effectHandler struct {
	dir      Direction
	amount   float64
	ref      *Latest[Viewport]
	logger   interfaces.Logger
	recorder Recorder
}

func (h *effectHandler) handle(intent Intent) {
	vp := h.ref.Get()
	if vp == nil {
		h.logger.Debug("scroll(%s): dropped %s intent, no viewport", h.dir, intent)
		h.recorder.IntentDropped(h.dir, intent)
		return
	}

	TriggerScroll(h.dir, vp, intent, h.amount)
	h.recorder.IntentApplied(h.dir, intent)
}
